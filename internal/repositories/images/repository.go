package images

import (
	"context"

	"github.com/dmitrijs2005/imgdrop/internal/models"
)

type Repository interface {
	// Insert stores rec and fills its ID and CreatedAt.
	Insert(ctx context.Context, rec *models.ImageRecord) error
	// List returns images newest first. A nil projectID lists every image.
	List(ctx context.Context, projectID *string) ([]*models.ImageRecord, error)
}

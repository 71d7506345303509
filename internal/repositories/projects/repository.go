package projects

import (
	"context"

	"github.com/dmitrijs2005/imgdrop/internal/models"
)

type Repository interface {
	Create(ctx context.Context, name string) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Count(ctx context.Context) (int64, error)
}

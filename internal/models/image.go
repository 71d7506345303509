package models

import "time"

// ImageRecord is the persisted result of a managed upload. ProjectName is
// filled on reads from the joined projects row.
type ImageRecord struct {
	ID          string
	ProjectID   *string
	ProjectName *string
	StoragePath string
	PublicURL   string
	Name        string
	CreatedAt   time.Time
}

package models

import "time"

// Project is an optional grouping tag for uploaded images.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

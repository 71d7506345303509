// Package common defines sentinel errors shared by repositories and
// services. Match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors.
	ErrEmptyName  = errors.New("name must not be empty")
	ErrInvalidURL = errors.New("invalid url")
)

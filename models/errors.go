package models

import "errors"

// Sentinel errors shared by the content packages.
// Use errors.Is to check: errors.Is(err, models.ErrEmptySource)
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptySource  = errors.New("empty source")
)

package database

import "errors"

// Error taxonomy surfaced by the store layer. Anything else coming out of
// a query is a wrapped driver error and maps to 500 at the edge; the core
// never retries those itself.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation error")
)

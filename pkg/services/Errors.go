package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an album or photo does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPathViolation is returned when a requested path resolves outside
	// the photo root. Callers facing untrusted input should surface this
	// the same way as ErrNotFound.
	ErrPathViolation = errors.New("path is outside the photo root")
)

/*
ThumbnailGenerationError wraps a decode, resize, or encode failure for
a single photo. It is scoped to that photo; listings should keep going
and substitute a placeholder.
*/
type ThumbnailGenerationError struct {
	Path string
	Err  error
}

func (e *ThumbnailGenerationError) Error() string {
	return fmt.Sprintf("error generating thumbnail for '%s': %v", e.Path, e.Err)
}

func (e *ThumbnailGenerationError) Unwrap() error {
	return e.Err
}

package reference

import (
	"errors"
	"fmt"
)

// ErrNoReferenceData is returned when no reference file could be loaded.
var ErrNoReferenceData = errors.New("no reference data loaded")

// FileError records a reference file that was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

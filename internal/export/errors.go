package export

import (
	"errors"
	"fmt"
)

// ValidationError rejects an export invoked with invalid state before any
// side effect occurs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "export validation: " + e.Reason
}

// IsValidationError reports whether err wraps a pre-flight rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Error wraps any failure during preload, audio-graph construction, or
// recording. An export error is terminal for that attempt: resources are
// released and no partial output survives.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func exportErr(stage string, err error) error {
	return &Error{Stage: stage, Err: err}
}

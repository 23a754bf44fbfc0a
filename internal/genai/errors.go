package genai

import (
	"errors"
	"fmt"
)

// CredentialError means the service rejected the request because the API key
// is missing, invalid, or expired. It is the only error class with a
// cross-cutting side effect: the active key is marked invalid in the key
// store so the user is prompted to pick another.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential rejected: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// QuotaError means a rate or quota limit was hit. Retryable by the user, not
// retried automatically.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %v", e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// ContentFilteredError means the service declined to produce media for
// safety-filtering reasons. Surfaced distinctly so the user can revise the
// input rather than retry blindly.
type ContentFilteredError struct {
	Detail string
}

func (e *ContentFilteredError) Error() string {
	if e.Detail == "" {
		return "content filtered by the service"
	}
	return "content filtered by the service: " + e.Detail
}

// MalformedResponseError means the service returned data that does not parse
// into the expected shape.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed service response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ServiceError is any other service-side failure.
type ServiceError struct {
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("service error (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsCredential reports whether err is a credential rejection.
func IsCredential(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// IsContentFiltered reports whether err is a safety-filter decline.
func IsContentFiltered(err error) bool {
	var cf *ContentFilteredError
	return errors.As(err, &cf)
}

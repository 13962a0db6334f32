package artifact

import (
	"errors"
	"fmt"
)

var (
	// ErrDownloadFailed marks any transport-level failure: connection
	// errors, timeouts, non-2xx responses and truncated bodies.
	ErrDownloadFailed = errors.New("download failed")
	// ErrIntegrityFailure marks a freshly downloaded artifact whose digest
	// did not match the expected one.
	ErrIntegrityFailure = errors.New("integrity failure")
	// ErrConfigurationMissing is reported, never returned from Acquire,
	// when no expected digest is configured and verification is skipped.
	ErrConfigurationMissing = errors.New("no digest configured")
	// ErrInvalidDescriptor is returned before any I/O when a Descriptor
	// fails validation.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	// ErrContentLengthMismatch indicates the body ended before (or after)
	// the advertised Content-Length.
	ErrContentLengthMismatch = errors.New("content length mismatch")
)

// Error wraps a sentinel error with additional detail.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DownloadError is returned by Acquire when the transfer itself failed.
// It matches ErrDownloadFailed and the underlying transport error.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%v: GET %s: %v", ErrDownloadFailed, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() []error {
	return []error{ErrDownloadFailed, e.Err}
}

// IntegrityError is returned when an artifact's digest does not match.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
	Reason   string
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("%v: %s: expected %s, got %s", ErrIntegrityFailure, e.Path, e.Expected, e.Actual)
	if e.Actual == "" && e.Reason != "" {
		msg = fmt.Sprintf("%v: %s: %s", ErrIntegrityFailure, e.Path, e.Reason)
	}
	return msg
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrityFailure
}

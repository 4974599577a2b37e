package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleTooShort = errors.New("title must be at least 2 characters")
	ErrTitleTooLong  = errors.New("title must be at most 100 characters")
	ErrEmptyPatch    = errors.New("update patch is empty")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TransportError is the only failure shape a store is allowed to surface:
// a human-readable message plus an optional HTTP-ish status code (0 when
// the failure never reached a server, e.g. a connection error).
type TransportError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Err        error  `json:"-"`
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError builds a TransportError from a message and status.
func NewTransportError(message string, statusCode int) *TransportError {
	return &TransportError{Message: message, StatusCode: statusCode}
}

// WrapTransport converts err into a TransportError, preserving an existing
// one unchanged. Store implementations use this at their boundary so callers
// only ever see TransportError-shaped failures.
func WrapTransport(err error, statusCode int) *TransportError {
	if err == nil {
		return nil
	}
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr
	}
	return &TransportError{Message: err.Error(), StatusCode: statusCode, Err: err}
}

// ErrorMessage extracts the display message from a failure: the bare
// message for a TransportError, err.Error() otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.Message
	}
	return err.Error()
}

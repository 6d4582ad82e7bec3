package model

import (
	"errors"
	"fmt"
)

// ErrAuthRequired marks an upstream 401. Callers hand it to the session gate
// instead of showing it as an ordinary failure.
var ErrAuthRequired = errors.New("authentication required")

var ErrInvalidTransition = errors.New("invalid transition for current phase")

var (
	ErrNoAnswerSelected = &ValidationError{Field: "answer", Message: "Please select an answer"}
	ErrNoPhotoSelected  = &ValidationError{Field: "photo", Message: "Please select an image first"}
)

// ValidationError is raised locally, before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RejectionError means a response arrived but reported failure.
type RejectionError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream rejected request (status %d)", e.StatusCode)
}

// NetworkError means no response was obtained.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Reason is the underlying failure text shown after "Network error: ".
func (e *NetworkError) Reason() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// RejectionText returns the server-provided message of a rejection, or
// fallback when the server gave none.
func RejectionText(err error, fallback string) string {
	var rej *RejectionError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return fallback
}

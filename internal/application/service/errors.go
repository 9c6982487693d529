package service

import (
	"errors"
	"fmt"

	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

var (
	// ErrMissingFields is returned when a required submission field is empty
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidNumber is returned when hours or rate do not parse as a non-negative number
	ErrInvalidNumber = errors.New("invalid number")

	// ErrFileTooLarge is returned when a document exceeds the size limit
	ErrFileTooLarge = errors.New("file exceeds the size limit")

	// ErrUnsupportedDocument is returned for a document with a disallowed extension
	ErrUnsupportedDocument = errors.New("unsupported document type")

	// ErrClaimNotFound is returned when no claim has the requested ID or position
	ErrClaimNotFound = errors.New("claim not found")
)

// NumberError reports a form field that did not parse as a number
type NumberError struct {
	Field string
	Input string
	Err   error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("%s %q %v", e.Field, e.Input, e.Err)
}

// Is matches ErrInvalidNumber
func (e *NumberError) Is(target error) bool {
	return target == ErrInvalidNumber
}

func (e *NumberError) Unwrap() error {
	return e.Err
}

// TransitionError reports a status change the transition policy refused
type TransitionError struct {
	Current workflow.State
	Trigger workflow.Trigger
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("claim is already %s", e.Current.Label())
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

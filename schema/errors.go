package schema

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a collaborator failure. The kind is assigned at the
// call site that observed the failure, never inferred from message text.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindFailure     ErrorKind = "failure"
	KindEmptyResult ErrorKind = "empty_result"
)

// CollaboratorError wraps a failure from an external collaborator
// (embedding model, generation model, vector store).
type CollaboratorError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *CollaboratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// NewCollaboratorError builds a kinded collaborator error.
func NewCollaboratorError(op string, kind ErrorKind, err error) *CollaboratorError {
	return &CollaboratorError{Op: op, Kind: kind, Err: err}
}

// IsTimeout reports whether err carries KindTimeout.
func IsTimeout(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce) && ce.Kind == KindTimeout
}

// IsEmptyResult reports whether err carries KindEmptyResult.
func IsEmptyResult(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce) && ce.Kind == KindEmptyResult
}

// ErrConfigurationMissing signals that a required startup configuration
// artifact is absent where absence is not allowed to degrade.
var ErrConfigurationMissing = errors.New("configuration missing")

// ValidationError reports an invalid request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a request validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package rag

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned at startup when the index holds no passages.
var ErrEmptyIndex = errors.New("vector index is empty")

// ValidationError reports a malformed or missing request field.
// No collaborator has been called when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DependencyError wraps a failure of the embedder, the index or the
// language model while serving a request.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func dependencyErr(op string, err error) *DependencyError {
	return &DependencyError{Op: op, Err: err}
}

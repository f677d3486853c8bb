package types

import (
	"errors"
	"fmt"
)

// CustomError is returned by middleware that rejects a request before it
// reaches a handler (session checks, input parsing).
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Kind classifies a workflow failure.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindInvalidState  Kind = "invalid_state"
	KindConflict      Kind = "conflict"
)

// WorkflowError is the outcome of a rejected workflow command. Nothing the
// command attempted is committed when one is returned.
type WorkflowError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is matches any WorkflowError of the same kind when the target is one of the
// sentinels below (a WorkflowError without a message).
func (e *WorkflowError) Is(target error) bool {
	t, ok := target.(*WorkflowError)
	if !ok {
		return false
	}
	if t.Message != "" {
		return t == e
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrAuthorization = &WorkflowError{Kind: KindAuthorization}
	ErrNotFound      = &WorkflowError{Kind: KindNotFound}
	ErrValidation    = &WorkflowError{Kind: KindValidation}
	ErrInvalidState  = &WorkflowError{Kind: KindInvalidState}
	ErrConflict      = &WorkflowError{Kind: KindConflict}
)

func newError(kind Kind, format string, args ...any) *WorkflowError {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports a caller that lacks a required role.
func Authorization(format string, args ...any) error {
	return newError(KindAuthorization, format, args...)
}

// NotFound reports a referenced paper, version, review or user that does not exist.
func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// Validation reports malformed input.
func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

// InvalidState reports an operation that is not valid for the entity's current state.
func InvalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

// Conflict reports a lost race or a uniqueness violation. Callers may retry
// the whole command.
func Conflict(err error, format string, args ...any) error {
	e := newError(KindConflict, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of a workflow error, or "" for anything else.
func KindOf(err error) Kind {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports a missing course, topic or test.
type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{message: msg}
}

func (err *NotFoundError) Error() string {
	return err.message
}

// ForbiddenError reports a request the user is not allowed to make
// (not enrolled, wrong role, topic still locked).
type ForbiddenError struct {
	message string
}

func NewForbiddenError(msg string) *ForbiddenError {
	return &ForbiddenError{message: msg}
}

func (err *ForbiddenError) Error() string {
	return err.message
}

// BadRequestError reports a malformed request.
type BadRequestError struct {
	message string
}

func NewBadRequestError(msg string) *BadRequestError {
	return &BadRequestError{message: msg}
}

func (err *BadRequestError) Error() string {
	return err.message
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

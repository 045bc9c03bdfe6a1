// Package apperror carries coded errors from the connector up to callers,
// each code bound to a default HTTP status.
package apperror

import (
	"errors"
	"strings"
	"time"
)

// AppError is a coded error with an optional cause.
type AppError struct {
	Code    Code
	Message string
	// Context names the input or collaborator the error is about.
	Context string
	Status  int
	At      time.Time

	cause error
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Context != "" {
		b.WriteString(" (context: ")
		b.WriteString(e.Context)
		b.WriteByte(')')
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches any AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Option adjusts an AppError under construction.
type Option func(*AppError)

func WithMessage(message string) Option {
	return func(e *AppError) { e.Message = message }
}

func WithContext(context string) Option {
	return func(e *AppError) { e.Context = context }
}

// WithStatusCode overrides the status derived from the code.
func WithStatusCode(status int) Option {
	return func(e *AppError) { e.Status = status }
}

func WithCause(cause error) Option {
	return func(e *AppError) { e.cause = cause }
}

// New builds an AppError. The message defaults to the catalogue entry for
// code, or to the code itself.
func New(code Code, opts ...Option) *AppError {
	e := &AppError{
		Code:    code,
		Message: messages[code],
		Status:  statusFor(code),
		At:      time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Message == "" {
		e.Message = string(code)
	}
	return e
}

// Wrap returns err unchanged when it already is an AppError, filling in an
// empty Context. Anything else becomes code with err as the cause.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}
	return New(code, WithContext(context), WithCause(err))
}

// GetCode returns the code of the first AppError in err's chain.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsPricingFailure separates "this pair has no market" from a broken
// dependency.
func IsPricingFailure(err error) bool {
	switch GetCode(err) {
	case CodeNoRouteFound, CodeEmptyPathSet:
		return true
	}
	return false
}

package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Common error types used across the futures and event loop packages

var (
	// ErrTimeout indicates that a blocking wait ran out of time before a
	// terminal result was recorded.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidArgument indicates that an argument was rejected before
	// any work was started.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPanicked indicates that user code panicked and the panic was
	// converted into an error.
	ErrPanicked = errors.New("panicked")

	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrAlreadyStarted indicates that a one-shot operation was started twice.
	ErrAlreadyStarted = errors.New("already started")
)

// ValidationError describes an argument or configuration value that failed
// validation. It wraps ErrInvalidArgument.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a hint and returns the same instance for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidArgument.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// OperationError records which module operation failed and why.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError without context.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches context and returns the same instance for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// PanicError is a recovered panic turned into an error, together with the
// stack trace captured at the point of recovery.
type PanicError struct {
	Value interface{}
	Stack []byte
}

// Recovered wraps a value returned by recover. It must be called from the
// deferred function so the captured stack still contains the panic site.
func Recovered(v interface{}) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is reports whether target is ErrPanicked.
func (e *PanicError) Is(target error) bool {
	return target == ErrPanicked
}

// IsTimeout returns true if err is or wraps ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsPanic returns true if err is or wraps a recovered panic.
func IsPanic(err error) bool {
	return errors.Is(err, ErrPanicked)
}

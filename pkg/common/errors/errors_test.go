package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrTimeout", ErrTimeout, "operation timed out"},
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrPanicked", ErrPanicked, "panicked"},
		{"ErrClosed", ErrClosed, "resource is closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "chain",
				Field:  "timeout",
				Value:  "500µs",
				Reason: "must be at least 1ms",
			},
			want: "chain: invalid timeout=500µs (must be at least 1ms)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "worker",
				Field:  "workers",
				Value:  0,
				Reason: "must be positive",
				Hint:   "use a value greater than 0",
			},
			want: "worker: invalid workers=0 (must be positive) - use a value greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test")

	if verr.Unwrap() != ErrInvalidArgument {
		t.Errorf("Unwrap() = %v, want ErrInvalidArgument", verr.Unwrap())
	}
	if !errors.Is(verr, ErrInvalidArgument) {
		t.Error("ValidationError should wrap ErrInvalidArgument")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid").
		WithHint("try using a positive value")

	if err.Hint != "try using a positive value" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try using a positive value")
	}
	if result := err.WithHint("new hint"); result != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestOperationError(t *testing.T) {
	err := NewOperationError("chain", "Get", ErrTimeout).WithContext("after 10ms")

	if got, want := err.Error(), "chain.Get failed: operation timed out (after 10ms)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsTimeout(err) {
		t.Error("OperationError should wrap its cause")
	}
}

func TestPanicError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		value     interface{}
		wantCause bool
	}{
		{"error value", cause, true},
		{"string value", "boom", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			func() {
				defer func() { err = Recovered(recover()) }()
				panic(tt.value)
			}()

			if !IsPanic(err) {
				t.Fatalf("IsPanic(%v) = false", err)
			}
			if got := errors.Is(err, cause); got != tt.wantCause {
				t.Errorf("errors.Is(err, cause) = %v, want %v", got, tt.wantCause)
			}
			if !strings.Contains(err.Error(), "boom") {
				t.Errorf("Error() = %q, want it to mention the panic value", err.Error())
			}
			var perr *PanicError
			if !errors.As(err, &perr) || len(perr.Stack) == 0 {
				t.Error("PanicError should carry a stack trace")
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", NewValidationError("test", "field", 0, "test"), true},
		{"wrapped validation error", &OperationError{Cause: NewValidationError("test", "field", 0, "test")}, true},
		{"operation error", &OperationError{Cause: errors.New("test")}, false},
		{"timeout error", ErrTimeout, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.want {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.want)
			}
		})
	}
}

package validation

import (
	"strconv"
	"time"

	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
)

// MinTimeout is the smallest timeout a blocking wait accepts.
const MinTimeout = time.Millisecond

// ValidateTimeout validates that a timeout is at least MinTimeout.
// Returns a ValidationError otherwise.
func ValidateTimeout(module, field string, value time.Duration) error {
	if value < MinTimeout {
		return cferrors.NewValidationError(module, field, value, "cannot be less than 1ms").
			WithHint("use Get or Wait without a timeout to wait forever")
	}
	return nil
}

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return cferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateAtLeast validates that an integer value is not below min.
func ValidateAtLeast(module, field string, value, min int) error {
	if value < min {
		return cferrors.NewValidationError(module, field, value, "is too small").
			WithHint("value must be at least " + strconv.Itoa(min))
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return cferrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return cferrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

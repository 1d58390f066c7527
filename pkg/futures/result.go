package futures

import "fmt"

// Result holds either a value or a captured failure. The zero Result holds
// a nil value.
//
// A failing Result does not signal anything on its own: the failure only
// surfaces when a consumer calls Unwrap.
type Result struct {
	value any
	err   error
}

// NewResult boxes chunk. A non-nil error becomes a failure, anything else
// a value.
func NewResult(chunk any) Result {
	if err, ok := chunk.(error); ok && err != nil {
		return Result{err: err}
	}
	return Result{value: chunk}
}

// Failure returns a Result holding err.
func Failure(err error) Result {
	return Result{err: err}
}

// Unwrap returns the value, or the captured failure as the error.
func (r Result) Unwrap() (any, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.value, nil
}

// Value returns the stored value; it is nil for a failing Result.
func (r Result) Value() any { return r.value }

// Err returns the captured failure, if any.
func (r Result) Err() error { return r.err }

// Failed reports whether the Result holds a failure.
func (r Result) Failed() bool { return r.err != nil }

func (r Result) String() string {
	if r.err != nil {
		return fmt.Sprintf("Result(failure: %v)", r.err)
	}
	return fmt.Sprintf("Result(%v)", r.value)
}

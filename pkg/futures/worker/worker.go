package worker

import (
	"log/slog"
	"sync/atomic"
	"time"

	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/common/validation"
	"github.com/ijon/cocaine-framework-go/pkg/eventloop"
	"github.com/ijon/cocaine-framework-go/pkg/futures"
	"github.com/ijon/cocaine-framework-go/pkg/logging"
	"github.com/ijon/cocaine-framework-go/pkg/metrics"
)

// Func is a blocking call to run off the loop goroutine.
type Func func() (any, error)

// Config holds configuration options for a Worker.
type Config struct {
	// Loop receives the outcome. Required.
	Loop eventloop.Loop

	// Runner starts the call. Nil means Detached.
	Runner Runner

	// Name labels log records and metrics. Defaults to "worker".
	Name string

	// Logger receives failed runs at debug level. Nil uses slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// Worker runs one blocking call on another goroutine and hands its outcome
// back to the loop. A Worker is one-shot.
type Worker struct {
	loop    eventloop.Loop
	fn      Func
	runner  Runner
	name    string
	logger  *slog.Logger
	metrics *metrics.Registry
	started atomic.Bool
}

var _ futures.Awaitable = (*Worker)(nil)

// New creates a detached worker for fn.
func New(loop eventloop.Loop, fn Func) *Worker {
	return NewWithConfig(Config{Loop: loop}, fn)
}

// NewWithConfig creates a worker for fn. It panics if config.Loop or fn is
// nil.
func NewWithConfig(config Config, fn Func) *Worker {
	if err := validation.ValidateNotNil("worker", "loop", config.Loop); err != nil {
		panic(err)
	}
	if fn == nil {
		panic(cferrors.NewValidationError("worker", "func", nil, "cannot be nil"))
	}
	if config.Runner == nil {
		config.Runner = Detached{}
	}
	if config.Name == "" {
		config.Name = "worker"
	}
	return &Worker{
		loop:    config.Loop,
		fn:      fn,
		runner:  config.Runner,
		name:    config.Name,
		logger:  logging.OrDefault(config.Logger).With("worker", config.Name),
		metrics: config.Metrics,
	}
}

// Threaded wraps fn so that each call returns a Worker for it instead of
// running it. The Worker can be returned from a pipeline stage or yielded
// from a coroutine.
func Threaded[A any](loop eventloop.Loop, fn func(A) (any, error)) func(A) *Worker {
	return func(arg A) *Worker {
		return New(loop, func() (any, error) { return fn(arg) })
	}
}

// RunBackground starts the call and, once it returns, posts cb(outcome) to
// the loop. The outcome is the returned value, the returned error, or a
// *errors.PanicError; callers tell them apart by type.
//
// It returns an error wrapping errors.ErrAlreadyStarted on a second call,
// or the Runner's error if the call could not be started.
func (w *Worker) RunBackground(cb func(outcome any)) error {
	if !w.started.CompareAndSwap(false, true) {
		return cferrors.NewOperationError("worker", "run_background", cferrors.ErrAlreadyStarted).
			WithContext("worker=" + w.name)
	}

	return w.runner.Go(func() {
		outcome := w.call()
		w.loop.Post(func() { cb(outcome) })
	})
}

func (w *Worker) call() (outcome any) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = cferrors.Recovered(r)
		}
		w.record(outcome, time.Since(start))
	}()

	v, err := w.fn()
	if err != nil {
		return err
	}
	return v
}

func (w *Worker) record(outcome any, d time.Duration) {
	err, failed := outcome.(error)
	if failed {
		w.logger.Debug("background call failed", "error", err, "duration", d)
	}
	if w.metrics == nil {
		return
	}
	w.metrics.WorkerRuns.WithLabelValues(w.name).Inc()
	w.metrics.WorkerDuration.WithLabelValues(w.name).Observe(d.Seconds())
	if failed {
		w.metrics.WorkerFailures.WithLabelValues(w.name).Inc()
	}
}

// Await starts the worker and returns a Future for its outcome. An error
// outcome arrives on the value path like any other outcome, where a stage
// boxes it as a failure and a coroutine has it raised at its yield.
func (w *Worker) Await() futures.Future {
	m := futures.NewManual()
	if err := w.RunBackground(m.Signal); err != nil {
		return futures.Reject(w.loop, err)
	}
	return m
}

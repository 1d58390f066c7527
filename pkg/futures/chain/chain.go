package chain

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/common/validation"
	"github.com/ijon/cocaine-framework-go/pkg/eventloop"
	"github.com/ijon/cocaine-framework-go/pkg/futures"
	"github.com/ijon/cocaine-framework-go/pkg/logging"
	"github.com/ijon/cocaine-framework-go/pkg/metrics"
)

// Config holds pipeline configuration options.
type Config struct {
	// Loop drives every stage. Required.
	Loop eventloop.Loop

	// Name labels log records and metrics. Defaults to "pipeline".
	Name string

	// Logger receives stage failures and wait timeouts. Nil uses slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// OnStageStart is called on the loop goroutine when a stage starts.
	OnStageStart func(index int, in futures.Result)

	// OnStageComplete is called on the loop goroutine when a stage delivers.
	OnStageComplete func(result StageResult)
}

// Stats holds pipeline execution statistics.
type Stats struct {
	StagesStarted   int64
	StagesCompleted int64
	StagesFailed    int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	Waits           int64
	Timeouts        int64
}

// Pipeline is an ordered, growable sequence of stages. Appending a stage
// starts it as soon as its input is available; Get and Wait block the
// caller by running the loop until the last stage delivers.
//
// A Pipeline belongs to the loop goroutine and is not safe for concurrent
// use.
type Pipeline struct {
	id      uuid.UUID
	name    string
	loop    eventloop.Loop
	logger  *slog.Logger
	metrics *metrics.Registry
	config  Config

	stages []*stage
	ready  bool
	result futures.Result
	stats  Stats
}

var _ futures.Awaitable = (*Pipeline)(nil)

// New creates an empty pipeline on loop.
func New(loop eventloop.Loop) *Pipeline {
	return NewWithConfig(Config{Loop: loop})
}

// NewWithConfig creates an empty pipeline. It panics if config.Loop is nil.
func NewWithConfig(config Config) *Pipeline {
	if err := validation.ValidateNotNil("chain", "loop", config.Loop); err != nil {
		panic(err)
	}
	if config.Name == "" {
		config.Name = "pipeline"
	}

	id := uuid.New()
	return &Pipeline{
		id:      id,
		name:    config.Name,
		loop:    config.Loop,
		logger:  logging.OrDefault(config.Logger).With("pipeline", config.Name, "pipeline_id", id.String()),
		metrics: config.Metrics,
		config:  config,
		ready:   true,
	}
}

// From creates a pipeline on loop and appends fns in order.
func From(loop eventloop.Loop, fns ...Func) *Pipeline {
	p := New(loop)
	for _, fn := range fns {
		p.Then(fn)
	}
	return p
}

// ID returns the pipeline's unique identifier.
func (p *Pipeline) ID() uuid.UUID { return p.id }

// Name returns the configured name.
func (p *Pipeline) Name() string { return p.name }

// Len returns the number of stages appended with Then.
func (p *Pipeline) Len() int {
	n := 0
	for _, s := range p.stages {
		if !s.internal {
			n++
		}
	}
	return n
}

// Ready reports whether no terminal result is outstanding: nothing has been
// appended yet, or Get or Wait has collected the result of the last stage.
func (p *Pipeline) Ready() bool { return p.ready }

// Then appends fn and returns the pipeline.
//
// The first stage starts immediately with the zero Result. Later stages
// start immediately with the previous stage's Result if it has already
// been delivered, or as soon as it is.
func (p *Pipeline) Then(fn Func) *Pipeline {
	if fn == nil {
		panic(cferrors.NewValidationError("chain", "func", nil, "cannot be nil"))
	}
	p.append(fn, false)
	return p
}

func (p *Pipeline) append(fn Func, internal bool) *stage {
	s := &stage{p: p, index: len(p.stages), fn: fn, internal: internal}

	var prev *stage
	if n := len(p.stages); n > 0 {
		prev = p.stages[n-1]
	}
	p.stages = append(p.stages, s)
	p.ready = false
	p.result = futures.Result{}

	switch {
	case prev == nil:
		s.run(futures.Result{})
	case prev.finished:
		s.run(prev.last)
	default:
		prev.next = s
	}
	return s
}

// Get blocks until the last stage delivers and returns its unwrapped
// Result. Called from inside a loop callback, it runs the loop re-entrantly.
func (p *Pipeline) Get() (any, error) {
	return p.get("get", 0)
}

// GetWithTimeout is Get with a deadline. It returns a ValidationError for
// timeouts under one millisecond, and an error wrapping
// errors.ErrTimeout if the deadline passes first. The stages keep running
// after a timeout; their result is discarded.
func (p *Pipeline) GetWithTimeout(timeout time.Duration) (any, error) {
	if err := validation.ValidateTimeout("chain", "timeout", timeout); err != nil {
		return nil, err
	}
	return p.get("get", timeout)
}

func (p *Pipeline) get(op string, timeout time.Duration) (any, error) {
	r, err := p.collect(op, timeout)
	if err != nil {
		return nil, err
	}
	return r.Unwrap()
}

// Wait blocks like Get but discards the outcome. A failing terminal Result
// is cached silently.
func (p *Pipeline) Wait() {
	_, _ = p.collect("wait", 0)
}

// WaitWithTimeout is Wait with a deadline. The only error it returns is
// the ValidationError for timeouts under one millisecond.
func (p *Pipeline) WaitWithTimeout(timeout time.Duration) error {
	if err := validation.ValidateTimeout("chain", "timeout", timeout); err != nil {
		return err
	}
	_, _ = p.collect("wait", timeout)
	return nil
}

// waiter is the state shared between a blocked Get or Wait, its sink
// stage and its timeout callback.
type waiter struct {
	waiting  bool
	recorded bool
	timedOut bool
	result   futures.Result
}

// collect returns the terminal Result, running the loop if it is not
// available yet. The only error it returns is a timeout, never a stage
// failure.
func (p *Pipeline) collect(op string, timeout time.Duration) (futures.Result, error) {
	p.stats.Waits++

	if p.ready {
		p.countWait("cached")
		return p.result, nil
	}
	if last := p.stages[len(p.stages)-1]; last.finished {
		p.countWait("finished")
		p.ready = true
		p.result = last.last
		return p.result, nil
	}

	p.countWait("nested")
	w := &waiter{}
	p.append(func(in futures.Result) (any, error) {
		if !w.recorded {
			w.recorded = true
			w.result = in
			if w.waiting {
				p.loop.Stop()
			}
		}
		return in.Unwrap()
	}, true)

	if !w.recorded {
		var timer eventloop.Timer
		if timeout > 0 {
			timer = p.loop.ScheduleAfter(timeout, func() {
				if w.waiting && !w.recorded {
					w.timedOut = true
					p.loop.Stop()
				}
			})
		}

		// A Stop that is neither ours nor our timeout's was meant for an
		// enclosing Run. Keep waiting and hand it on once we are done.
		owed := 0
		w.waiting = true
		for {
			p.loop.Run()
			if w.recorded || w.timedOut {
				break
			}
			owed++
		}
		w.waiting = false

		if timer != nil {
			timer.Stop()
		}
		for ; owed > 0; owed-- {
			p.loop.Stop()
		}
	}

	if w.recorded {
		p.ready = true
		p.result = w.result
		return w.result, nil
	}

	p.stats.Timeouts++
	if p.metrics != nil {
		p.metrics.PipelineTimeout.WithLabelValues(p.name).Inc()
	}
	p.logger.Warn("pipeline wait timed out", "op", op, "timeout", timeout)
	return futures.Result{}, cferrors.NewOperationError("chain", op, cferrors.ErrTimeout).
		WithContext(fmt.Sprintf("pipeline=%s timeout=%v", p.name, timeout))
}

// Await returns a Future for the pipeline's next terminal Result, so a
// pipeline can be yielded from a coroutine or returned from a stage. A
// failing Result is delivered on the failure path.
func (p *Pipeline) Await() futures.Future {
	m := futures.NewManual()
	p.append(func(in futures.Result) (any, error) {
		v, err := in.Unwrap()
		if err != nil {
			m.Fail(err)
		} else {
			m.Signal(v)
		}
		return v, err
	}, true)
	return m
}

// Stats returns pipeline execution statistics.
func (p *Pipeline) Stats() Stats {
	stats := p.stats
	if done := stats.StagesCompleted + stats.StagesFailed; done > 0 {
		stats.AverageDuration = time.Duration(int64(stats.TotalDuration) / done)
	}
	return stats
}

func (p *Pipeline) countWait(path string) {
	if p.metrics != nil {
		p.metrics.PipelineWaits.WithLabelValues(p.name, path).Inc()
	}
}

func (p *Pipeline) stageStarted(s *stage, in futures.Result) {
	p.stats.StagesStarted++
	if p.metrics != nil {
		p.metrics.StagesStarted.WithLabelValues(p.name).Inc()
	}
	if p.config.OnStageStart != nil {
		p.config.OnStageStart(s.index, in)
	}
}

func (p *Pipeline) stageCompleted(s *stage) {
	duration := time.Since(s.started)
	p.stats.TotalDuration += duration

	if s.last.Failed() {
		p.stats.StagesFailed++
		p.logger.Debug("stage failed", "stage", s.index, "error", s.last.Err())
	} else {
		p.stats.StagesCompleted++
	}

	if p.metrics != nil {
		if s.last.Failed() {
			p.metrics.StagesFailed.WithLabelValues(p.name).Inc()
		} else {
			p.metrics.StagesCompleted.WithLabelValues(p.name).Inc()
		}
		p.metrics.StageDuration.WithLabelValues(p.name).Observe(duration.Seconds())
	}

	if p.config.OnStageComplete != nil {
		p.config.OnStageComplete(StageResult{
			Index:    s.index,
			Result:   s.last,
			Duration: duration,
		})
	}
}

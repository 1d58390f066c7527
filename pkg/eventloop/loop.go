package eventloop

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"

	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/logging"
	"github.com/ijon/cocaine-framework-go/pkg/metrics"
)

// Loop is the scheduling contract the futures packages run on.
//
// Every method except Post and Stop must be called from the goroutine
// currently driving Run.
type Loop interface {
	// ScheduleNow queues cb to run on a later iteration, after every
	// callback queued before it.
	ScheduleNow(cb func())

	// ScheduleAfter runs cb once d has elapsed.
	ScheduleAfter(d time.Duration, cb func()) Timer

	// Post queues cb from any goroutine.
	Post(cb func())

	// Run processes callbacks until the matching Stop. Run may be called
	// from inside a callback; the nested call returns on the next Stop and
	// the outer one keeps going.
	Run()

	// Stop makes the innermost active Run return once the current
	// callback finishes. Stop is a no-op when the loop is not running.
	Stop()
}

// Config holds configuration options for an IOLoop.
type Config struct {
	// Name labels log records and metrics.
	Name string

	// Logger receives panics recovered from callbacks. Nil uses slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{Name: "default"}
}

// IOLoop is the in-process Loop implementation: a FIFO ready queue, a
// timer heap and a wake channel for cross-goroutine posts.
type IOLoop struct {
	name    string
	logger  *slog.Logger
	metrics *metrics.Registry

	mu     sync.Mutex
	ready  []func()
	timers timerHeap
	seq    uint64
	frames []*frame
	wake   chan struct{}
}

// frame is one active Run call.
type frame struct {
	stopped bool
}

var _ Loop = (*IOLoop)(nil)

// New creates a loop with the default configuration.
func New() *IOLoop {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a loop from config.
func NewWithConfig(config Config) *IOLoop {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	return &IOLoop{
		name:    config.Name,
		logger:  logging.OrDefault(config.Logger),
		metrics: config.Metrics,
		wake:    make(chan struct{}, 1),
	}
}

// Name returns the configured loop name.
func (l *IOLoop) Name() string {
	return l.name
}

// ScheduleNow implements Loop.
func (l *IOLoop) ScheduleNow(cb func()) {
	l.enqueue(cb)
}

// Post implements Loop. It is safe to call from any goroutine.
func (l *IOLoop) Post(cb func()) {
	l.enqueue(cb)
}

func (l *IOLoop) enqueue(cb func()) {
	if cb == nil {
		panic("eventloop: nil callback")
	}
	l.mu.Lock()
	l.ready = append(l.ready, cb)
	depth := len(l.ready)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.LoopQueueDepth.WithLabelValues(l.name).Set(float64(depth))
	}
	l.notify()
}

// ScheduleAfter implements Loop. A non-positive d fires on the next
// iteration, after callbacks that are already queued.
func (l *IOLoop) ScheduleAfter(d time.Duration, cb func()) Timer {
	if cb == nil {
		panic("eventloop: nil callback")
	}
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	l.seq++
	t := &timer{
		loop:     l,
		deadline: time.Now().Add(d),
		seq:      l.seq,
		cb:       cb,
	}
	heap.Push(&l.timers, t)
	l.mu.Unlock()

	l.notify()
	return t
}

// notify wakes a Run blocked waiting for work.
func (l *IOLoop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run implements Loop.
func (l *IOLoop) Run() {
	f := &frame{}

	l.mu.Lock()
	depth := len(l.frames)
	l.frames = append(l.frames, f)
	l.mu.Unlock()

	if depth > 0 && l.metrics != nil {
		l.metrics.LoopNestedRuns.WithLabelValues(l.name).Inc()
	}

	defer func() {
		l.mu.Lock()
		l.frames = l.frames[:len(l.frames)-1]
		l.mu.Unlock()
	}()

	for {
		cb, wait, stopped := l.next(f)
		if stopped {
			return
		}
		if cb != nil {
			l.invoke(cb)
			continue
		}
		l.sleep(wait)
	}
}

// next pops the next callback for frame f. When nothing is runnable it
// returns how long to sleep, or a negative duration to sleep until woken.
func (l *IOLoop) next(f *frame) (cb func(), wait time.Duration, stopped bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f.stopped {
		return nil, 0, true
	}

	now := time.Now()
	for len(l.timers) > 0 && !l.timers[0].deadline.After(now) {
		t := heap.Pop(&l.timers).(*timer)
		t.state = timerQueued
		l.ready = append(l.ready, t.fire)
	}

	if len(l.ready) > 0 {
		cb = l.ready[0]
		l.ready[0] = nil
		l.ready = l.ready[1:]
		if l.metrics != nil {
			l.metrics.LoopQueueDepth.WithLabelValues(l.name).Set(float64(len(l.ready)))
		}
		return cb, 0, false
	}

	if len(l.timers) > 0 {
		return nil, l.timers[0].deadline.Sub(now), false
	}
	return nil, -1, false
}

func (l *IOLoop) sleep(wait time.Duration) {
	if wait < 0 {
		<-l.wake
		return
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-l.wake:
	case <-t.C:
	}
}

// invoke runs cb, logging and counting a panic instead of unwinding Run.
func (l *IOLoop) invoke(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			err := cferrors.Recovered(r)
			l.logger.Error("loop callback panicked",
				"loop", l.name,
				"error", err,
				"stack", string(err.Stack))
			if l.metrics != nil {
				l.metrics.LoopCallbackPanics.WithLabelValues(l.name).Inc()
			}
		}
	}()

	if l.metrics != nil {
		l.metrics.LoopCallbacks.WithLabelValues(l.name).Inc()
	}
	cb()
}

// Stop implements Loop.
func (l *IOLoop) Stop() {
	l.mu.Lock()
	if n := len(l.frames); n > 0 {
		l.frames[n-1].stopped = true
	}
	l.mu.Unlock()
	l.notify()
}

// Depth returns the number of active Run calls.
func (l *IOLoop) Depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Pending returns the number of callbacks queued to run now.
func (l *IOLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ready)
}

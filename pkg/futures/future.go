package futures

import (
	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/eventloop"
)

// Future delivers exactly one completion: either onValue or onFailure is
// called, once, on the loop goroutine.
type Future interface {
	// Bind registers the completion callbacks. onFailure may be nil.
	Bind(onValue func(any), onFailure func(error))
}

// Awaitable is implemented by things that can be turned into a Future when
// a stage returns them or a coroutine yields them.
type Awaitable interface {
	Await() Future
}

// deliver calls onValue(v); a panic raised by onValue is handed to
// onFailure when there is one.
func deliver(onValue func(any), onFailure func(error), v any) {
	if onFailure == nil {
		onValue(v)
		return
	}

	var failure error
	func() {
		defer func() {
			if r := recover(); r != nil {
				failure = cferrors.Recovered(r)
			}
		}()
		onValue(v)
	}()
	if failure != nil {
		onFailure(failure)
	}
}

type immediate struct {
	loop  eventloop.Loop
	value any
}

// Immediate returns a Future for an already known value. The value is
// still delivered on a later loop iteration, never from inside Bind.
func Immediate(loop eventloop.Loop, v any) Future {
	return &immediate{loop: loop, value: v}
}

func (f *immediate) Bind(onValue func(any), onFailure func(error)) {
	f.loop.ScheduleNow(func() {
		deliver(onValue, onFailure, f.value)
	})
}

type rejected struct {
	loop eventloop.Loop
	err  error
}

// Reject returns a Future that fails with err on a later loop iteration.
func Reject(loop eventloop.Loop, err error) Future {
	return &rejected{loop: loop, err: err}
}

func (f *rejected) Bind(onValue func(any), onFailure func(error)) {
	f.loop.ScheduleNow(func() {
		if onFailure != nil {
			onFailure(f.err)
			return
		}
		onValue(f.err)
	})
}

// Manual is a Future completed by an explicit Signal or Fail call.
//
// A completion made before Bind is held and delivered from Bind. Manual is
// not safe for concurrent use; complete it from the loop goroutine, for
// example through Loop.Post.
type Manual struct {
	onValue   func(any)
	onFailure func(error)
	bound     bool

	completed bool
	pending   *Result
}

var _ Future = (*Manual)(nil)

// NewManual creates an incomplete Manual future.
func NewManual() *Manual {
	return &Manual{}
}

// Bind implements Future. Binding twice panics.
func (m *Manual) Bind(onValue func(any), onFailure func(error)) {
	if m.bound {
		panic("futures: Manual bound twice")
	}
	m.bound = true
	m.onValue = onValue
	m.onFailure = onFailure

	if m.pending != nil {
		r := *m.pending
		m.pending = nil
		m.dispatch(r)
	}
}

// Signal completes the future on the value path. A panic in the bound
// value callback is forwarded to the failure callback.
func (m *Manual) Signal(v any) {
	m.complete(Result{value: v})
}

// Fail completes the future on the failure path.
func (m *Manual) Fail(err error) {
	m.complete(Failure(err))
}

// Done reports whether Signal or Fail has been called.
func (m *Manual) Done() bool {
	return m.completed
}

func (m *Manual) complete(r Result) {
	if m.completed {
		panic("futures: Manual completed twice")
	}
	m.completed = true

	if !m.bound {
		m.pending = &r
		return
	}
	m.dispatch(r)
}

func (m *Manual) dispatch(r Result) {
	if r.Failed() {
		if m.onFailure != nil {
			m.onFailure(r.err)
			return
		}
		m.onValue(r.err)
		return
	}
	deliver(m.onValue, m.onFailure, r.value)
}

// Async calls start with a fresh Manual and returns it as a Future. start
// is expected to arrange for Signal or Fail to be called, now or later.
func Async(start func(m *Manual)) Future {
	m := NewManual()
	start(m)
	return m
}

// Adapt turns a stage return value or a coroutine request into a Future.
// Futures are used as is, Generators are driven by FromGenerator,
// Awaitables are awaited and anything else, nil included, becomes an
// Immediate future.
func Adapt(loop eventloop.Loop, v any) Future {
	switch x := v.(type) {
	case Future:
		return x
	case Generator:
		return FromGenerator(loop, x)
	case Awaitable:
		return x.Await()
	default:
		return Immediate(loop, v)
	}
}

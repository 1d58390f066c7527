package chain

import (
	"time"

	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/futures"
)

// Func is a pipeline stage. It receives the Result of the previous stage
// (the zero Result for the first stage) and returns either a plain value,
// a futures.Future, a futures.Generator or a futures.Awaitable.
//
// A returned error, or a panic, fails the stage. The failure does not stop
// the pipeline: it is boxed and handed to the next stage like any other
// Result, and only surfaces when someone calls Unwrap on it.
type Func func(in futures.Result) (any, error)

// Propagate is a Func that passes its input through, turning a failing
// Result back into a failure of this stage.
func Propagate(in futures.Result) (any, error) {
	return in.Unwrap()
}

// StageResult describes one finished stage.
type StageResult struct {
	// Index is the position of the stage in its pipeline.
	Index int

	// Result is what the stage delivered to its successor.
	Result futures.Result

	// Duration is the time from starting the stage to its delivery.
	Duration time.Duration
}

// stage is one Func plus its wiring into the next stage.
type stage struct {
	p     *Pipeline
	index int
	fn    Func

	// internal stages are appended by Get, Wait and Await; they are not
	// counted, timed or reported.
	internal bool

	next     *stage
	finished bool
	last     futures.Result
	started  time.Time
}

func (s *stage) run(in futures.Result) {
	s.started = time.Now()
	if !s.internal {
		s.p.stageStarted(s, in)
	}

	f, err := s.invoke(in)
	if err != nil {
		s.onFailure(err)
		return
	}
	f.Bind(s.onValue, s.onFailure)
}

func (s *stage) invoke(in futures.Result) (f futures.Future, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, cferrors.Recovered(r)
		}
	}()

	v, err := s.fn(in)
	if err != nil {
		return nil, err
	}
	return futures.Adapt(s.p.loop, v), nil
}

// onValue records the first delivery and starts the successor, if one is
// linked. Later deliveries are ignored.
func (s *stage) onValue(chunk any) {
	if s.finished {
		return
	}
	s.finished = true
	s.last = futures.NewResult(chunk)

	if !s.internal {
		s.p.stageCompleted(s)
	}
	if s.next != nil {
		s.next.run(s.last)
	}
}

// onFailure boxes err and delivers it through the value path.
func (s *stage) onFailure(err error) {
	s.onValue(err)
}

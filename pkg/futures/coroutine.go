package futures

import (
	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/eventloop"
)

// Generator is a resumable computation that suspends by yielding requests.
//
// Resume continues the generator with v; ResumeWithError continues it by
// raising e at the suspension point. Both return the next request with
// more set to true, or more set to false once the generator has finished.
// A non-nil err means the generator terminated with a failure it did not
// handle.
type Generator interface {
	Resume(v any) (req any, more bool, err error)
	ResumeWithError(e error) (req any, more bool, err error)
}

// coroutine drives a Generator to completion, adapting each yielded request
// into a Future and resuming the generator with that Future's outcome.
type coroutine struct {
	loop      eventloop.Loop
	gen       Generator
	onValue   func(any)
	onFailure func(error)
}

// FromGenerator returns a Future that starts driving gen when bound.
//
// When gen finishes, the Future delivers the last value it was resumed
// with (nil if it never received one). If that value was an error the
// generator handled, it is still delivered on the value path.
func FromGenerator(loop eventloop.Loop, gen Generator) Future {
	return &coroutine{loop: loop, gen: gen}
}

func (c *coroutine) Bind(onValue func(any), onFailure func(error)) {
	c.onValue = onValue
	c.onFailure = onFailure
	c.advance(nil)
}

func (c *coroutine) advance(v any) {
	req, more, err := c.step(v)
	if err != nil {
		if c.onFailure != nil {
			c.onFailure(err)
		}
		return
	}
	if !more {
		c.onValue(v)
		return
	}

	// Both outcomes resume the generator: a value is sent in, a failure is
	// raised at the yield.
	Adapt(c.loop, req).Bind(
		func(x any) { c.advance(x) },
		func(e error) { c.advance(e) },
	)
}

func (c *coroutine) step(v any) (req any, more bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			req, more, err = nil, false, cferrors.Recovered(r)
		}
	}()

	if e, ok := v.(error); ok && e != nil {
		return c.gen.ResumeWithError(e)
	}
	return c.gen.Resume(v)
}

// Yielder is handed to a generator body started by NewGenerator.
type Yielder struct {
	g *goroutineGenerator
}

// Yield suspends the body until the driver resumes it. It returns the value
// the body was resumed with, or the error raised into it.
func (y *Yielder) Yield(req any) (any, error) {
	y.g.out <- yieldMsg{req: req}
	msg := <-y.g.in
	return msg.value, msg.err
}

type resumeMsg struct {
	value any
	err   error
}

type yieldMsg struct {
	req  any
	done bool
	err  error
}

// goroutineGenerator runs a body on its own goroutine. Control is handed
// back and forth over unbuffered channels, so the body and the driver
// never run at the same time.
type goroutineGenerator struct {
	body    func(y *Yielder) error
	started bool
	done    bool
	in      chan resumeMsg
	out     chan yieldMsg
}

// NewGenerator returns a Generator backed by body. The body starts on the
// first Resume and runs until it returns; an error it returns, or a panic,
// terminates the generator with a failure.
//
// A generator that is abandoned before it finishes leaves its goroutine
// blocked in Yield.
func NewGenerator(body func(y *Yielder) error) Generator {
	return &goroutineGenerator{
		body: body,
		in:   make(chan resumeMsg),
		out:  make(chan yieldMsg),
	}
}

func (g *goroutineGenerator) Resume(v any) (any, bool, error) {
	return g.send(resumeMsg{value: v})
}

func (g *goroutineGenerator) ResumeWithError(e error) (any, bool, error) {
	if !g.started && !g.done {
		// Nothing to catch it yet: the error escapes immediately.
		g.done = true
		return nil, false, e
	}
	return g.send(resumeMsg{err: e})
}

func (g *goroutineGenerator) send(msg resumeMsg) (any, bool, error) {
	if g.done {
		return nil, false, nil
	}
	if !g.started {
		g.started = true
		go g.run()
	}

	g.in <- msg
	reply := <-g.out
	if reply.done {
		g.done = true
		return nil, false, reply.err
	}
	return reply.req, true, nil
}

func (g *goroutineGenerator) run() {
	// The first resume only starts the body.
	<-g.in

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = cferrors.Recovered(r)
		}
		g.out <- yieldMsg{done: true, err: err}
	}()
	err = g.body(&Yielder{g: g})
}

/*
Package chain builds pipelines of stages that run on an eventloop.Loop.

A stage is a Func. It receives the Result of the stage before it and may
return a plain value, a futures.Future, a futures.Generator or a
futures.Awaitable such as another Pipeline or a worker.Worker:

	p := chain.New(loop).
		Then(func(futures.Result) (any, error) {
			return fetch("user/42"), nil // a Future
		}).
		Then(func(in futures.Result) (any, error) {
			user, err := in.Unwrap()
			if err != nil {
				return nil, err
			}
			return render(user), nil
		})

	page, err := p.GetWithTimeout(time.Second)

Stages start as soon as their input is available; the first one starts
inside Then. Nothing runs in parallel: every stage and every completion is
a loop callback.

# Failures

A stage fails by returning an error or by panicking. The failure is boxed
into the Result handed to the next stage, which still runs. It surfaces
when a stage calls Unwrap on its input, or when Get unwraps the terminal
Result. Propagate is a stage that does exactly that.

# Blocking

Get and Wait block the caller by running the loop until the last stage
delivers. They may be called from inside a loop callback, including from
inside a stage of another pipeline; the loop is then run re-entrantly.
A Get on a pipeline from inside one of its own stages never returns.

With a timeout, Get gives up with an error wrapping errors.ErrTimeout. The
stages keep running and a later Get picks up their result. Timeouts under
one millisecond are rejected before the loop runs.
*/
package chain

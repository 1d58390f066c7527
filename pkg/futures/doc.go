/*
Package futures provides the single-delivery Future contract and its
providers, all of which complete on an eventloop.Loop.

# Futures

A Future calls exactly one of the two callbacks passed to Bind, exactly
once, on the loop goroutine:

  - Immediate wraps a known value and delivers it on a later loop iteration.
  - Reject does the same on the failure path.
  - Manual is completed explicitly with Signal or Fail.
  - FromGenerator drives a coroutine-style Generator.

Async mirrors the callback style of asynchronous APIs:

	f := futures.Async(func(m *futures.Manual) {
		client.Fetch(key, func(v []byte, err error) {
			loop.Post(func() {
				if err != nil {
					m.Fail(err)
					return
				}
				m.Signal(v)
			})
		})
	})

# Results

Result boxes a value or a failure. A failing Result is an ordinary value
until someone calls Unwrap; nothing short-circuits on its own.

# Coroutines

A Generator suspends by yielding requests and is resumed with their
outcome. NewGenerator runs an ordinary function body on its own goroutine,
handing control back and forth with the driver:

	gen := futures.NewGenerator(func(y *futures.Yielder) error {
		user, err := y.Yield(fetchUser(id)) // a Future
		if err != nil {
			return err
		}
		_, err = y.Yield(saveAudit(user))
		return err
	})

Each request is adapted with Adapt: Futures are used directly, Awaitables
(such as chain pipelines and background workers) are awaited, nested
Generators are driven in turn and any other value is delivered back
unchanged on the next loop iteration. A failed request is raised into the
body as the error returned from Yield.

When the body returns, the Future delivers the last value the body was
resumed with.
*/
package futures

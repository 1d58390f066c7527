/*
Package cocaine is a futures and chaining toolkit for applications built
around a single-threaded cooperative event loop.

Event loop (pkg/eventloop):
  - IOLoop: FIFO callbacks, one-shot timers and cross-goroutine posts
  - re-entrant Run/Stop, so code inside a callback can block on a result
  - ScheduleCron: cron-driven periodic callbacks

Futures (pkg/futures):
  - Future: exactly-once delivery of a value or a failure
  - Immediate, Reject, Manual and Async providers
  - FromGenerator: coroutine-style code that yields futures

Pipelines (pkg/futures/chain):
  - Then: append stages that start as soon as their input is available
  - Get and Wait: block by running the loop, with optional timeouts

Background work (pkg/futures/worker):
  - Worker: run a blocking call elsewhere and post the outcome to the loop
  - Pool: a bounded runner that joins its goroutines on shutdown

Example usage:

	import (
		"github.com/ijon/cocaine-framework-go/pkg/eventloop"
		"github.com/ijon/cocaine-framework-go/pkg/futures"
		"github.com/ijon/cocaine-framework-go/pkg/futures/chain"
		"github.com/ijon/cocaine-framework-go/pkg/futures/worker"
	)

	loop := eventloop.New()
	fetch := worker.Threaded(loop, func(url string) (any, error) {
		return http.Get(url)
	})

	body, err := chain.New(loop).
		Then(func(futures.Result) (any, error) {
			return fetch("http://example.com"), nil
		}).
		Then(readBody).
		GetWithTimeout(5 * time.Second)
*/
package cocaine

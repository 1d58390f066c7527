/*
Package worker runs blocking calls off the loop goroutine and hands their
outcome back through Loop.Post.

	w := worker.New(loop, func() (any, error) {
		return http.Get(url)
	})
	err := w.RunBackground(func(outcome any) {
		// Runs on the loop goroutine.
		if err, ok := outcome.(error); ok {
			log.Println("fetch failed:", err)
		}
	})

A Worker is an Awaitable, so it can be returned from a pipeline stage or
yielded from a coroutine, where an error outcome becomes a stage failure or
an error returned from Yield:

	fetch := worker.Threaded(loop, func(url string) (any, error) {
		return http.Get(url)
	})
	p := chain.New(loop).Then(func(futures.Result) (any, error) {
		return fetch("http://example.com"), nil
	})

# Runners

By default each call runs on a Detached goroutine that nobody joins, so
the process can exit while calls are still in flight. A Pool bounds the
number of concurrent calls and joins its goroutines on Shutdown:

	pool, err := worker.NewPool(4, 16)
	...
	w := worker.NewWithConfig(worker.Config{Loop: loop, Runner: pool}, fn)
	...
	<-pool.Shutdown()
*/
package worker

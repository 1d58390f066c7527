/*
Package eventloop provides the single-threaded cooperative scheduler that
pipelines, futures and workers run on.

A Loop runs callbacks one at a time on whichever goroutine calls Run. Other
goroutines hand work to it only through Post:

	loop := eventloop.New()

	go func() {
		result := compute()
		loop.Post(func() {
			fmt.Println(result)
			loop.Stop()
		})
	}()

	loop.Run()

# Nesting

Run is re-entrant. A callback may call Run again to wait for something
that is itself delivered through the loop; the nested Run keeps processing
the shared queue and returns on the next Stop, after which the outer Run
resumes:

	loop.ScheduleNow(func() {
		loop.ScheduleAfter(10*time.Millisecond, loop.Stop)
		loop.Run() // returns after ~10ms
		loop.Stop() // stops the outer Run
	})
	loop.Run()

Stop always targets the innermost active Run.

# Timers

ScheduleAfter returns a Timer that can be stopped before it fires. Timers
that come due are appended to the ready queue behind callbacks already
waiting, so a busy queue delays them but never starves them.

# Periodic callbacks

ScheduleCron and SchedulePeriodic re-arm a callback after each activation
using robfig/cron schedules:

	t, err := eventloop.ScheduleCron(loop, "@every 1s", func() {
		log.Println("tick")
	})
	...
	t.Stop()

# Thread Safety

Post and Stop may be called from any goroutine. The remaining methods are
meant for the goroutine driving Run; they are internally locked, but the
ordering guarantees only hold for a single producer.
*/
package eventloop

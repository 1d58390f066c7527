package eventloop_test

import (
	"fmt"
	"time"

	"github.com/ijon/cocaine-framework-go/pkg/eventloop"
)

func Example() {
	loop := eventloop.New()

	loop.ScheduleAfter(5*time.Millisecond, func() {
		fmt.Println("timer")
		loop.Stop()
	})
	loop.ScheduleNow(func() { fmt.Println("first") })
	loop.ScheduleNow(func() { fmt.Println("second") })

	loop.Run()

	// Output:
	// first
	// second
	// timer
}

func Example_post() {
	loop := eventloop.New()
	done := make(chan struct{})

	go func() {
		defer close(done)
		sum := 0
		for i := 1; i <= 10; i++ {
			sum += i
		}
		loop.Post(func() {
			fmt.Println("sum:", sum)
			loop.Stop()
		})
	}()

	loop.Run()
	<-done

	// Output:
	// sum: 55
}

func Example_nested() {
	loop := eventloop.New()

	loop.ScheduleNow(func() {
		loop.ScheduleAfter(time.Millisecond, func() {
			fmt.Println("inner stop, depth", loop.Depth())
			loop.Stop()
		})
		loop.Run()
		fmt.Println("outer resumed, depth", loop.Depth())
		loop.Stop()
	})
	loop.Run()

	// Output:
	// inner stop, depth 2
	// outer resumed, depth 1
}

package eventloop

import (
	"container/heap"
	"time"
)

// Timer is a handle to a delayed callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or was already stopped.
	Stop() bool
}

type timerState int

const (
	timerPending timerState = iota
	timerQueued
	timerFired
	timerStopped
)

// timer is a ScheduleAfter entry. All fields are guarded by the owning
// loop's mutex.
type timer struct {
	loop     *IOLoop
	deadline time.Time
	seq      uint64
	cb       func()
	index    int
	state    timerState
}

func (t *timer) Stop() bool {
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()

	switch t.state {
	case timerPending:
		heap.Remove(&l.timers, t.index)
		t.state = timerStopped
		return true
	case timerQueued:
		// Already moved to the ready queue; fire checks the state.
		t.state = timerStopped
		return true
	default:
		return false
	}
}

// fire runs on the loop goroutine from the ready queue.
func (t *timer) fire() {
	l := t.loop
	l.mu.Lock()
	if t.state != timerQueued {
		l.mu.Unlock()
		return
	}
	t.state = timerFired
	l.mu.Unlock()
	t.cb()
}

// timerHeap orders timers by deadline, then by scheduling order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

package eventloop

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts an optional seconds field and descriptors such as
// "@every 90s" or "@hourly". Cron schedules have one second resolution.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseCron parses a cron expression with the parser used by ScheduleCron.
func ParseCron(expr string) (cron.Schedule, error) {
	if expr == "" {
		return nil, fmt.Errorf("cron expression cannot be empty")
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression '%s': %w", expr, err)
	}
	return schedule, nil
}

// ScheduleCron runs cb on l every time the cron expression fires, until the
// returned Timer is stopped.
//
// Examples:
//
//	"*/5 * * * * *" - every 5 seconds
//	"0 */2 * * *"   - every 2 hours
//	"@every 1m30s"  - every 90 seconds
func ScheduleCron(l Loop, expr string, cb func()) (Timer, error) {
	schedule, err := ParseCron(expr)
	if err != nil {
		return nil, err
	}
	return SchedulePeriodic(l, schedule, cb), nil
}

// SchedulePeriodic runs cb on l at every activation of schedule. The next
// activation is computed after cb returns, so a slow callback skips
// activations instead of piling them up.
func SchedulePeriodic(l Loop, schedule cron.Schedule, cb func()) Timer {
	if cb == nil {
		panic("eventloop: nil callback")
	}
	p := &periodic{loop: l, schedule: schedule, cb: cb}
	p.arm()
	return p
}

type periodic struct {
	loop     Loop
	schedule cron.Schedule
	cb       func()

	mu      sync.Mutex
	current Timer
	stopped bool
}

func (p *periodic) arm() {
	now := time.Now()
	next := p.schedule.Next(now)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if next.IsZero() {
		// The schedule has no further activations.
		p.stopped = true
		p.current = nil
		return
	}
	p.current = p.loop.ScheduleAfter(next.Sub(now), p.fire)
}

func (p *periodic) fire() {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return
	}

	defer p.arm()
	p.cb()
}

// Stop cancels future activations. It returns false if already stopped.
func (p *periodic) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	p.stopped = true
	if p.current != nil {
		p.current.Stop()
		p.current = nil
	}
	return true
}

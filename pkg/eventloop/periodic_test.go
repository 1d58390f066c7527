package eventloop

import (
	"strings"
	"testing"
	"time"

	"github.com/ijon/cocaine-framework-go/internal/testutil"
)

// every is a cron.Schedule with sub-second resolution.
type every struct {
	interval time.Duration
	limit    int
	calls    int
}

func (e *every) Next(t time.Time) time.Time {
	if e.limit > 0 && e.calls >= e.limit {
		return time.Time{}
	}
	e.calls++
	return t.Add(e.interval)
}

func TestSchedulePeriodic_Rearms(t *testing.T) {
	loop := New()
	ticks := 0

	var timer Timer
	timer = SchedulePeriodic(loop, &every{interval: 2 * time.Millisecond}, func() {
		ticks++
		if ticks == 3 {
			timer.Stop()
			loop.Stop()
		}
	})
	loop.Run()

	testutil.AssertEqual(t, ticks, 3)
	if timer.Stop() {
		t.Error("Stop on a stopped periodic timer should return false")
	}
}

func TestSchedulePeriodic_ScheduleExhausted(t *testing.T) {
	loop := New()
	ticks := 0

	SchedulePeriodic(loop, &every{interval: time.Millisecond, limit: 2}, func() { ticks++ })
	loop.ScheduleAfter(30*time.Millisecond, loop.Stop)
	loop.Run()

	testutil.AssertEqual(t, ticks, 2)
}

func TestSchedulePeriodic_StopBeforeFirstTick(t *testing.T) {
	loop := New()
	ticks := 0

	timer := SchedulePeriodic(loop, &every{interval: 5 * time.Millisecond}, func() { ticks++ })
	if !timer.Stop() {
		t.Fatal("Stop should cancel a pending activation")
	}
	loop.ScheduleAfter(20*time.Millisecond, loop.Stop)
	loop.Run()

	testutil.AssertEqual(t, ticks, 0)
}

func TestScheduleCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{"descriptor", "@every 1s", ""},
		{"with seconds", "*/5 * * * * *", ""},
		{"without seconds", "0 */2 * * *", ""},
		{"hourly", "@hourly", ""},
		{"empty", "", "cannot be empty"},
		{"garbage", "not a schedule", "invalid cron expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := New()
			timer, err := ScheduleCron(loop, tt.expr, func() {})
			if tt.wantErr != "" {
				testutil.AssertError(t, err)
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not mention %q", err, tt.wantErr)
				}
				return
			}
			testutil.AssertNoError(t, err)
			if !timer.Stop() {
				t.Error("fresh cron timer should be cancellable")
			}
			testutil.AssertEqual(t, loop.Pending(), 0)
		})
	}
}

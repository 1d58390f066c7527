// Package integration contains tests that drive the loop, pipelines,
// coroutines and workers together the way an application would.
package integration

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	itestutil "github.com/ijon/cocaine-framework-go/internal/testutil"
	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/eventloop"
	"github.com/ijon/cocaine-framework-go/pkg/futures"
	"github.com/ijon/cocaine-framework-go/pkg/futures/chain"
	"github.com/ijon/cocaine-framework-go/pkg/futures/worker"
	"github.com/ijon/cocaine-framework-go/pkg/logging"
	"github.com/ijon/cocaine-framework-go/pkg/metrics"
)

type user struct {
	ID   int
	Name string
}

var errNotFound = errors.New("not found")

// lookup simulates a blocking storage call.
func lookup(id int) (any, error) {
	time.Sleep(2 * time.Millisecond)
	if id <= 0 {
		return nil, fmt.Errorf("user %d: %w", id, errNotFound)
	}
	return user{ID: id, Name: fmt.Sprintf("user-%d", id)}, nil
}

// TestPipelineOverWorkerPool fans blocking lookups out to a pool and
// collects them in a coroutine stage.
func TestPipelineOverWorkerPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := metrics.NewRegistry(prometheus.NewRegistry())
	loop := eventloop.NewWithConfig(eventloop.Config{Name: "app", Metrics: reg})

	pool, err := worker.NewPoolWithConfig(worker.PoolConfig{Workers: 2, QueueSize: 8, Name: "storage", Metrics: reg})
	require.NoError(t, err)
	defer func() { <-pool.Shutdown() }()

	fetch := func(id int) *worker.Worker {
		return worker.NewWithConfig(worker.Config{Loop: loop, Runner: pool, Name: "lookup", Metrics: reg},
			func() (any, error) { return lookup(id) })
	}

	p := chain.NewWithConfig(chain.Config{Loop: loop, Name: "profile", Metrics: reg}).
		Then(func(futures.Result) (any, error) {
			return futures.NewGenerator(func(y *futures.Yielder) error {
				var names []string
				for _, id := range []int{1, 2, 3} {
					v, err := y.Yield(fetch(id))
					if err != nil {
						return err
					}
					names = append(names, v.(user).Name)
				}
				_, err := y.Yield(strings.Join(names, ","))
				return err
			}), nil
		}).
		Then(func(in futures.Result) (any, error) {
			v, err := in.Unwrap()
			if err != nil {
				return nil, err
			}
			return "profiles: " + v.(string), nil
		})

	got, err := p.GetWithTimeout(itestutil.TestTimeout)
	require.NoError(t, err)
	assert.Equal(t, "profiles: user-1,user-2,user-3", got)

	assert.Equal(t, 3.0, testutil.ToFloat64(reg.WorkerRuns.WithLabelValues("lookup")))
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.WorkerFailures.WithLabelValues("lookup")))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.StagesCompleted.WithLabelValues("profile")))
	assert.Greater(t, testutil.ToFloat64(reg.LoopCallbacks.WithLabelValues("app")), 0.0)
}

// TestWorkerFailureReachesCaller checks that a failed background call is
// raised at the coroutine's yield, handled there, and that an unhandled one
// ends up as the error returned by Get.
func TestWorkerFailureReachesCaller(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := eventloop.New()
	fetch := worker.Threaded(loop, lookup)

	handled := chain.New(loop).Then(func(futures.Result) (any, error) {
		return futures.NewGenerator(func(y *futures.Yielder) error {
			_, err := y.Yield(fetch(-1))
			if errors.Is(err, errNotFound) {
				_, err = y.Yield(user{Name: "anonymous"})
			}
			return err
		}), nil
	})
	got, err := handled.Get()
	require.NoError(t, err)
	assert.Equal(t, user{Name: "anonymous"}, got)

	unhandled := chain.New(loop).
		Then(func(futures.Result) (any, error) { return fetch(-2), nil }).
		Then(func(in futures.Result) (any, error) {
			assert.True(t, in.Failed(), "failure should reach the next stage boxed")
			return in.Unwrap()
		})
	_, err = unhandled.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotFound)
}

// TestNestedPipelines has one pipeline block on another from inside a stage
// while a third is completed by a timer.
func TestNestedPipelines(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := eventloop.New()
	fetch := worker.Threaded(loop, lookup)
	confirmed := futures.NewManual()
	loop.ScheduleAfter(5*time.Millisecond, func() { confirmed.Signal(true) })

	confirmation := chain.New(loop).Then(func(futures.Result) (any, error) { return confirmed, nil })

	order := chain.New(loop).
		Then(func(futures.Result) (any, error) { return fetch(7), nil }).
		Then(func(in futures.Result) (any, error) {
			u, err := in.Unwrap()
			if err != nil {
				return nil, err
			}
			ok, err := confirmation.Get()
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("%s confirmed=%v", u.(user).Name, ok), nil
		})

	got, err := order.GetWithTimeout(itestutil.TestTimeout)
	require.NoError(t, err)
	assert.Equal(t, "user-7 confirmed=true", got)
	assert.True(t, confirmation.Ready())
	assert.Equal(t, 0, loop.Depth())
}

// TestCronTicksDriveWork refreshes a value from a periodic loop timer until
// a pipeline waiting on it gives up.
func TestCronTicksDriveWork(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a cron activation")
	}
	defer goleak.VerifyNone(t)

	var logs itestutil.LogBuffer
	logger := logging.New(logging.Config{Verbosity: logging.Debug, Output: &logs, Target: "app/cron"})
	loop := eventloop.NewWithConfig(eventloop.Config{Name: "cron", Logger: logger})

	var ticks int32
	refreshed := futures.NewManual()
	timer, err := eventloop.ScheduleCron(loop, "* * * * * *", func() {
		if atomic.AddInt32(&ticks, 1) == 1 {
			refreshed.Signal("fresh")
		}
	})
	require.NoError(t, err)
	defer timer.Stop()

	p := chain.NewWithConfig(chain.Config{Loop: loop, Name: "refresh", Logger: logger}).
		Then(func(futures.Result) (any, error) { return refreshed, nil })

	got, err := p.GetWithTimeout(3 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&ticks), int32(1))

	_, err = eventloop.ScheduleCron(loop, "not a cron line", func() {})
	assert.Error(t, err)

	stalled := chain.NewWithConfig(chain.Config{Loop: loop, Name: "stalled", Logger: logger}).
		Then(func(futures.Result) (any, error) { return futures.NewManual(), nil })
	_, err = stalled.GetWithTimeout(5 * time.Millisecond)
	assert.True(t, cferrors.IsTimeout(err))
	assert.True(t, logs.Contains("pipeline wait timed out"))
	assert.True(t, logs.Contains("target=app/cron"))
}

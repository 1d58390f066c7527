package worker

import (
	"fmt"
	"log/slog"
	"sync"

	cferrors "github.com/ijon/cocaine-framework-go/pkg/common/errors"
	"github.com/ijon/cocaine-framework-go/pkg/common/validation"
	"github.com/ijon/cocaine-framework-go/pkg/logging"
	"github.com/ijon/cocaine-framework-go/pkg/metrics"
)

// Runner starts background calls for Workers.
type Runner interface {
	// Go starts task on another goroutine. It must not run task inline.
	Go(task func()) error
}

// Detached runs every task on a fresh goroutine that nobody waits for, so
// a process can exit with calls still in flight.
type Detached struct{}

// Go implements Runner.
func (Detached) Go(task func()) error {
	go task()
	return nil
}

// PoolConfig holds configuration options for a Pool.
type PoolConfig struct {
	// Workers is the number of goroutines. Must be greater than 0.
	Workers int

	// QueueSize is the number of tasks that can wait for a free goroutine.
	// 0 means Go blocks until a goroutine takes the task.
	QueueSize int

	// Name labels log records and metrics. Defaults to "pool".
	Name string

	// Logger receives task panics. Nil uses slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// Pool is a bounded Runner. Unlike Detached, Shutdown joins every
// goroutine after the queued tasks have run.
type Pool struct {
	config  PoolConfig
	logger  *slog.Logger
	metrics *metrics.Registry

	tasks        chan func()
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	mu         sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

var _ Runner = (*Pool)(nil)

// NewPool creates a pool with the given number of goroutines and queue size.
func NewPool(workers, queueSize int) (*Pool, error) {
	return NewPoolWithConfig(PoolConfig{Workers: workers, QueueSize: queueSize})
}

// NewPoolWithConfig creates a pool and starts its goroutines.
func NewPoolWithConfig(config PoolConfig) (*Pool, error) {
	if err := validation.ValidatePositive("worker", "workers", config.Workers); err != nil {
		return nil, err
	}
	if err := validation.ValidateAtLeast("worker", "queue size", config.QueueSize, 0); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = "pool"
	}

	p := &Pool{
		config:     config,
		logger:     logging.OrDefault(config.Logger).With("pool", config.Name),
		metrics:    config.Metrics,
		tasks:      make(chan func(), config.QueueSize),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}

	p.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.run(i)
	}
	if p.metrics != nil {
		p.metrics.PoolSize.WithLabelValues(config.Name).Set(float64(config.Workers))
	}
	return p, nil
}

// Go implements Runner. It blocks while the queue is full and returns an
// error wrapping errors.ErrClosed once Shutdown has been called.
func (p *Pool) Go(task func()) error {
	if task == nil {
		return cferrors.NewValidationError("worker", "task", nil, "cannot be nil")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isShutdown {
		return fmt.Errorf("cannot submit task: pool %s: %w", p.config.Name, cferrors.ErrClosed)
	}

	p.tasks <- task
	p.updateQueued()
	return nil
}

// Shutdown stops accepting tasks, lets the queued ones run and returns a
// channel that closes once every goroutine has exited.
func (p *Pool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		close(p.shutdownCh)
		p.mu.Unlock()

		go func() {
			p.wg.Wait()
			if p.metrics != nil {
				p.metrics.PoolSize.WithLabelValues(p.config.Name).Set(0)
			}
			close(p.done)
		}()
	})
	return p.done
}

// Size returns the number of goroutines in the pool.
func (p *Pool) Size() int {
	return p.config.Workers
}

// QueueSize returns the number of tasks waiting for a goroutine.
func (p *Pool) QueueSize() int {
	return len(p.tasks)
}

func (p *Pool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.tasks:
			p.execute(id, task)
		case <-p.shutdownCh:
			// No sends can start after shutdownCh is closed; drain what
			// is already queued.
			for {
				select {
				case task := <-p.tasks:
					p.execute(id, task)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) execute(id int, task func()) {
	p.updateQueued()
	defer func() {
		if r := recover(); r != nil {
			err := cferrors.Recovered(r)
			p.logger.Error("pool task panicked", "goroutine", id, "error", err, "stack", string(err.Stack))
		}
	}()
	task()
}

func (p *Pool) updateQueued() {
	if p.metrics != nil {
		p.metrics.PoolQueued.WithLabelValues(p.config.Name).Set(float64(len(p.tasks)))
	}
}

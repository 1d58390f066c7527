package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for the framework components.
type Registry struct {
	// Event Loop Metrics
	LoopCallbacks      *prometheus.CounterVec
	LoopCallbackPanics *prometheus.CounterVec
	LoopQueueDepth     *prometheus.GaugeVec
	LoopNestedRuns     *prometheus.CounterVec

	// Pipeline Metrics
	StagesStarted   *prometheus.CounterVec
	StagesCompleted *prometheus.CounterVec
	StagesFailed    *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	PipelineWaits   *prometheus.CounterVec
	PipelineTimeout *prometheus.CounterVec

	// Worker Metrics
	WorkerRuns     *prometheus.CounterVec
	WorkerFailures *prometheus.CounterVec
	WorkerDuration *prometheus.HistogramVec
	PoolSize       *prometheus.GaugeVec
	PoolQueued     *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry, registered with
// prometheus.DefaultRegisterer.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus
// registerer and the default namespace.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry from config.
// A nil Registry falls back to prometheus.DefaultRegisterer and an empty
// Namespace to DefaultNamespace.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(config.Labels) > 0 {
		reg = prometheus.WrapRegistererWith(config.Labels, reg)
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	factory := promauto.With(reg)

	return &Registry{
		// Event Loop Metrics
		LoopCallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "callbacks_total",
				Help:      "Total number of callbacks executed by the event loop",
			},
			[]string{"loop_name"},
		),

		LoopCallbackPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "callback_panics_total",
				Help:      "Total number of callbacks that panicked",
			},
			[]string{"loop_name"},
		),

		LoopQueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "queue_depth",
				Help:      "Number of callbacks waiting to run",
			},
			[]string{"loop_name"},
		),

		LoopNestedRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "loop",
				Name:      "nested_runs_total",
				Help:      "Total number of Run calls made while the loop was already running",
			},
			[]string{"loop_name"},
		),

		// Pipeline Metrics
		StagesStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "stages_started_total",
				Help:      "Total number of stages started",
			},
			[]string{"pipeline_name"},
		),

		StagesCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "stages_completed_total",
				Help:      "Total number of stages that delivered a value",
			},
			[]string{"pipeline_name"},
		),

		StagesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "stages_failed_total",
				Help:      "Total number of stages that delivered a failure",
			},
			[]string{"pipeline_name"},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Time between a stage starting and delivering its result",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline_name"},
		),

		PipelineWaits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "waits_total",
				Help:      "Total number of blocking retrievals, by path taken",
			},
			[]string{"pipeline_name", "path"},
		),

		PipelineTimeout: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "timeouts_total",
				Help:      "Total number of blocking retrievals that timed out",
			},
			[]string{"pipeline_name"},
		),

		// Worker Metrics
		WorkerRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "worker",
				Name:      "runs_total",
				Help:      "Total number of offloaded calls executed",
			},
			[]string{"worker_name"},
		),

		WorkerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "worker",
				Name:      "failures_total",
				Help:      "Total number of offloaded calls whose outcome was an error",
			},
			[]string{"worker_name"},
		),

		WorkerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "worker",
				Name:      "duration_seconds",
				Help:      "Time spent executing offloaded calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"worker_name"},
		),

		PoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Number of goroutines in the worker pool",
			},
			[]string{"pool_name"},
		),

		PoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued offloaded calls",
			},
			[]string{"pool_name"},
		),
	}
}

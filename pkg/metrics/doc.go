// Package metrics provides Prometheus instrumentation for the event loop,
// pipeline and worker components.
//
// # Overview
//
// Every component accepts an optional *Registry in its Config. A nil
// registry disables collection for that component, so metrics are strictly
// opt-in:
//
//	reg := metrics.NewRegistry(prometheus.NewRegistry())
//	loop := eventloop.NewWithConfig(eventloop.Config{Name: "main", Metrics: reg})
//	p := chain.NewWithConfig(chain.Config{Loop: loop, Name: "fetch", Metrics: reg})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// DefaultRegistry is registered with prometheus.DefaultRegisterer at init
// time. Creating a second registry against the same registerer panics on
// duplicate registration, so use DefaultRegistry or a fresh
// prometheus.NewRegistry().
//
// # Available Metrics
//
// ## Event Loop Metrics
//
//   - cocaine_loop_callbacks_total: Callbacks executed
//   - cocaine_loop_callback_panics_total: Callbacks that panicked
//   - cocaine_loop_queue_depth: Callbacks waiting to run
//   - cocaine_loop_nested_runs_total: Re-entrant Run calls
//
// ## Pipeline Metrics
//
//   - cocaine_pipeline_stages_started_total
//   - cocaine_pipeline_stages_completed_total
//   - cocaine_pipeline_stages_failed_total
//   - cocaine_pipeline_stage_duration_seconds
//   - cocaine_pipeline_waits_total: Blocking retrievals by path ("cached", "finished", "nested")
//   - cocaine_pipeline_timeouts_total
//
// ## Worker Metrics
//
//   - cocaine_worker_runs_total
//   - cocaine_worker_failures_total
//   - cocaine_worker_duration_seconds
//   - cocaine_workerpool_size
//   - cocaine_workerpool_queued_tasks
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "myapp",                         // Override default "cocaine"
//		Labels:    prometheus.Labels{"app": "echo"}, // Added to every metric
//	}
//	reg := metrics.FromConfig(config)
package metrics

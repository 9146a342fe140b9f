package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledwall"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Display metrics
	ModeTransitions    *prometheus.CounterVec
	TransitionFailures *prometheus.CounterVec
	RenderTasksActive  prometheus.Gauge
	RenderTasksStarted prometheus.Counter
	FramesWritten      prometheus.Counter
	LiveFrames         *prometheus.CounterVec

	// Slot metrics
	SlotWrites       *prometheus.CounterVec
	SlotCacheLookups *prometheus.CounterVec
	SlotsPopulated   prometheus.Gauge

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with every ledwall metric plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ModeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "mode_transitions_total",
			Help:      "Completed display mode transitions by target mode",
		}, []string{"mode"}),
		TransitionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "transition_failures_total",
			Help:      "Aborted display mode transitions by error code",
		}, []string{"code"}),
		RenderTasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "render_tasks_active",
			Help:      "Render tasks currently running (0 or 1)",
		}),
		RenderTasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "render_tasks_started_total",
			Help:      "Render tasks started",
		}),
		FramesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "frames_written_total",
			Help:      "Frames written to the sink",
		}),
		LiveFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "live_frames_total",
			Help:      "Live frames received by outcome (shown, dropped, corrupt)",
		}, []string{"result"}),

		SlotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slots",
			Name:      "writes_total",
			Help:      "Slot writes by outcome (ok, failed)",
		}, []string{"result"}),
		SlotCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slots",
			Name:      "cache_lookups_total",
			Help:      "Slot cache lookups by outcome (hit, miss)",
		}, []string{"result"}),
		SlotsPopulated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "slots",
			Name:      "populated",
			Help:      "Cached slots holding content",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ModeTransitions,
		r.TransitionFailures,
		r.RenderTasksActive,
		r.RenderTasksStarted,
		r.FramesWritten,
		r.LiveFrames,
		r.SlotWrites,
		r.SlotCacheLookups,
		r.SlotsPopulated,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// Registerer exposes the underlying registry for components that register
// their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Package prom implements the observability hooks with Prometheus metrics.
//
// One [Hooks] value serves all three hook interfaces:
//
//	h := prom.New(prometheus.NewRegistry())
//	observability.SetCascadeHooks(h)
//	observability.SetCacheHooks(h)
//	observability.SetHTTPHooks(h)
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/observability"
)

const namespace = "bombase"

// Hooks records cascade, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	packagesCreated *prometheus.CounterVec
	edits           *prometheus.CounterVec
	changedFields   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	tasksRunning    *prometheus.GaugeVec
	tasks           *prometheus.CounterVec
	taskDuration    *prometheus.HistogramVec

	cache      *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

var (
	_ observability.CascadeHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
	_ observability.HTTPHooks    = (*Hooks)(nil)
)

// New creates the metrics and registers them with reg, or with the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		packagesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "registry", Name: "packages_created_total",
			Help: "Packages created, by purl type.",
		}, []string{"type"}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "registry", Name: "edits_total",
			Help: "Completed edits, by purl type and result code.",
		}, []string{"type", "code"}),
		changedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "registry", Name: "changed_fields_total",
			Help: "Fields changed by edits, by purl type.",
		}, []string{"type"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "registry", Name: "notifications_total",
			Help: "Listener decisions, by listener and whether a task was scheduled.",
		}, []string{"listener", "scheduled"}),
		tasksRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "runner", Name: "tasks_running",
			Help: "Tasks currently running, by listener.",
		}, []string{"listener"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "runner", Name: "tasks_total",
			Help: "Finished tasks, by listener and result code.",
		}, []string{"listener", "code"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "runner", Name: "task_duration_seconds",
			Help:    "Task run time, by listener.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"listener"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "operations_total",
			Help: "Cache lookups and writes, by key namespace and result.",
		}, []string{"namespace", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the cache, by key namespace.",
		}, []string{"namespace"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Outgoing registry requests, by host and status.",
		}, []string{"method", "host", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Outgoing registry request latency, by host.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "errors_total",
			Help: "Outgoing registry requests that failed without a response, by host.",
		}, []string{"method", "host"}),
	}
	reg.MustRegister(
		h.packagesCreated, h.edits, h.changedFields, h.notifications,
		h.tasksRunning, h.tasks, h.taskDuration,
		h.cache, h.cacheBytes,
		h.requests, h.requestDuration, h.requestErrors,
	)
	return h
}

// Install registers h as the global cascade, cache and HTTP hooks.
func (h *Hooks) Install() {
	observability.SetCascadeHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func code(err error) string {
	if err == nil {
		return "OK"
	}
	if c := errors.GetCode(err); c != "" {
		return string(c)
	}
	return string(errors.ErrCodeInternal)
}

func (h *Hooks) OnPackageCreated(_ context.Context, purlType string) {
	h.packagesCreated.WithLabelValues(purlType).Inc()
}

func (h *Hooks) OnEdit(_ context.Context, purlType string, changed int, err error) {
	h.edits.WithLabelValues(purlType, code(err)).Inc()
	if changed > 0 {
		h.changedFields.WithLabelValues(purlType).Add(float64(changed))
	}
}

func (h *Hooks) OnNotify(_ context.Context, listener string, scheduled bool) {
	h.notifications.WithLabelValues(listener, strconv.FormatBool(scheduled)).Inc()
}

func (h *Hooks) OnTaskStart(_ context.Context, listener string) {
	h.tasksRunning.WithLabelValues(listener).Inc()
}

func (h *Hooks) OnTaskComplete(_ context.Context, listener string, d time.Duration, err error) {
	h.tasksRunning.WithLabelValues(listener).Dec()
	h.tasks.WithLabelValues(listener, code(err)).Inc()
	h.taskDuration.WithLabelValues(listener).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cache.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, method, host, _ string, _ error) {
	h.requestErrors.WithLabelValues(method, host).Inc()
}

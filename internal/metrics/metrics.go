// Package metrics exposes cache, provider and write-back outcomes to
// Prometheus. A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "city_weather"

type Metrics struct {
	registry        *prometheus.Registry
	cacheLookups    *prometheus.CounterVec
	snapshotReads   *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	writebackTasks  *prometheus.CounterVec
	writebackQueue  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache reads by key namespace and result.",
		}, []string{"namespace", "result"}),
		snapshotReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reads_total",
			Help:      "Snapshot store reads by result.",
		}, []string{"result"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Weather provider calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Weather provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		writebackTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writeback_tasks_total",
			Help:      "Write-back tasks by name and outcome.",
		}, []string{"task", "outcome"}),
		writebackQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "writeback_queue_depth",
			Help:      "Write-back tasks waiting for a worker.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheLookups,
		m.snapshotReads,
		m.providerCalls,
		m.providerLatency,
		m.writebackTasks,
		m.writebackQueue,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheLookup(keyNamespace, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(keyNamespace, result).Inc()
}

func (m *Metrics) SnapshotRead(result string) {
	if m == nil {
		return
	}
	m.snapshotReads.WithLabelValues(result).Inc()
}

func (m *Metrics) ProviderCall(operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(operation, outcome).Inc()
	m.providerLatency.WithLabelValues(operation).Observe(took.Seconds())
}

func (m *Metrics) WritebackTask(task, outcome string) {
	if m == nil {
		return
	}
	m.writebackTasks.WithLabelValues(task, outcome).Inc()
}

func (m *Metrics) WritebackQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.writebackQueue.Set(float64(depth))
}

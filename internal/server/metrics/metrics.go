// Package metrics exposes filekeeper's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "filekeeper"

// Upload and delete outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomePartial  = "partial"
)

// Collector is a prometheus.Collector for the upload pipelines and the HTTP
// surface. A nil *Collector is valid and records nothing.
type Collector struct {
	uploads         *prometheus.CounterVec
	uploadedBytes   prometheus.Counter
	deletes         *prometheus.CounterVec
	driftEvents     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "uploads_total",
				Help:      "Upload attempts by outcome.",
			}, []string{"outcome"},
		),
		uploadedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "uploaded_bytes_total",
				Help:      "Bytes written to the blob store by successful uploads.",
			},
		),
		deletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "deletes_total",
				Help:      "Delete attempts by outcome.",
			}, []string{"outcome"},
		),
		driftEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "drift_events_total",
				Help:      "Times the catalog and the blob store were found to disagree.",
			}, []string{"operation"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route", "status"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.uploads.Describe(ch)
	c.uploadedBytes.Describe(ch)
	c.deletes.Describe(ch)
	c.driftEvents.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.uploads.Collect(ch)
	c.uploadedBytes.Collect(ch)
	c.deletes.Collect(ch)
	c.driftEvents.Collect(ch)
	c.requestDuration.Collect(ch)
}

func (c *Collector) Upload(outcome string, bytes int64) {
	if c == nil {
		return
	}
	c.uploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK && bytes > 0 {
		c.uploadedBytes.Add(float64(bytes))
	}
}

func (c *Collector) Delete(outcome string) {
	if c == nil {
		return
	}
	c.deletes.WithLabelValues(outcome).Inc()
}

func (c *Collector) Drift(operation string) {
	if c == nil {
		return
	}
	c.driftEvents.WithLabelValues(operation).Inc()
}

func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves c, plus the Go and process collectors, from a private
// registry. A nil c serves only the runtime collectors.
func Handler(c *Collector) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	cols := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	if c != nil {
		cols = append(cols, c)
	}
	for _, col := range cols {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

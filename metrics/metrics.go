// Package metrics exposes Prometheus collectors for the tracker and its API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records application events in Prometheus metrics. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	records  *prometheus.CounterVec
	imports  *prometheus.CounterVec
	backups  *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// NewRecorder registers the collectors on reg. If reg is nil, a fresh
// registry is used. Collectors already registered on reg are reused.
func NewRecorder(reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridebook_records_written_total",
		Help: "Daily records saved or deleted",
	}, []string{"op"})
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridebook_imports_total",
		Help: "Data imports by mode",
	}, []string{"mode"})
	backups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridebook_backups_total",
		Help: "Scheduled backups by result",
	}, []string{"result"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridebook_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridebook_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	var err error
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	if imports, err = register(reg, imports); err != nil {
		return nil, err
	}
	if backups, err = register(reg, backups); err != nil {
		return nil, err
	}
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if err := reg.Register(latency); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		latency = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	return &Recorder{
		records:  records,
		imports:  imports,
		backups:  backups,
		requests: requests,
		latency:  latency,
		gatherer: reg,
	}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// RecordWrite counts a record save or delete.
func (r *Recorder) RecordWrite(op string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(op).Inc()
}

// RecordImport counts an import in the given mode.
func (r *Recorder) RecordImport(mode string) {
	if r == nil {
		return
	}
	r.imports.WithLabelValues(mode).Inc()
}

// RecordBackup counts a backup run.
func (r *Recorder) RecordBackup(ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.backups.WithLabelValues(result).Inc()
}

// RecordRequest counts an HTTP request and observes its latency.
func (r *Recorder) RecordRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

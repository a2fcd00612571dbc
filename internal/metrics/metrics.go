// Package metrics exports content index metrics to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/models"
)

// Result labels.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// PrometheusRecorder implements content.Observer using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	reg           *prom.Registry
	queryDuration *prom.HistogramVec
	queryResults  *prom.CounterVec
	loadErrors    *prom.CounterVec
}

var _ content.Observer = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// registry gets a fresh one with Go and process collectors.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.queryDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "worklog",
			Name:      "content_query_duration_seconds",
			Help:      "Duration of content index queries",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "section"})
		pr.queryResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "worklog",
			Name:      "content_query_results_total",
			Help:      "Content index query results by outcome",
		}, []string{"op", "section", "result"})
		pr.loadErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "worklog",
			Name:      "content_load_errors_total",
			Help:      "Documents that failed to load",
		}, []string{"section"})
		reg.MustRegister(pr.queryDuration, pr.queryResults, pr.loadErrors)
	})
	return pr
}

// ObserveQuery records one content query.
func (p *PrometheusRecorder) ObserveQuery(op string, section models.Section, d time.Duration, err error) {
	if p == nil || p.queryDuration == nil {
		return
	}
	p.queryDuration.WithLabelValues(op, string(section)).Observe(d.Seconds())
	p.queryResults.WithLabelValues(op, string(section), resultLabel(err)).Inc()

	var le *content.LoadError
	if errors.As(err, &le) {
		p.loadErrors.WithLabelValues(string(section)).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func resultLabel(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, apperr.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "envelope"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	envelopes    *prom.CounterVec
	errors       *prom.CounterVec
	viewDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		envelopes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "envelopes_total",
			Help:      "Response envelopes written, by schema, status class and outcome",
		}, []string{"schema", "status_class", "success", "many"}),
		errors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "classified_errors_total",
			Help:      "View errors handed to the classifier, by category",
		}, []string{"category"}),
		viewDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "view_duration_seconds",
			Help:      "Duration of view handling including envelope building",
			Buckets:   prom.DefBuckets,
		}, []string{"schema"}),
	}
	reg.MustRegister(pr.envelopes, pr.errors, pr.viewDuration)
	return pr
}

func (p *PrometheusRecorder) IncEnvelope(schema string, status int, success, many bool) {
	if p == nil {
		return
	}
	p.envelopes.WithLabelValues(schema, StatusClass(status),
		strconv.FormatBool(success), strconv.FormatBool(many)).Inc()
}

func (p *PrometheusRecorder) IncClassifiedError(category string) {
	if p == nil {
		return
	}
	p.errors.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) ObserveViewDuration(schema string, d time.Duration) {
	if p == nil {
		return
	}
	p.viewDuration.WithLabelValues(schema).Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

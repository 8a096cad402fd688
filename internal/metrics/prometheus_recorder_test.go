package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncEnvelope("v1", 200, true, false)
	pr.IncEnvelope("v1", 201, true, false)
	pr.IncEnvelope("v2", 421, false, true)
	pr.IncClassifiedError("unexpected")
	pr.ObserveViewDuration("v1", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.envelopes.WithLabelValues("v1", "2xx", "true", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.envelopes.WithLabelValues("v2", "4xx", "false", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.errors.WithLabelValues("unexpected")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 3)
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncEnvelope("v1", 200, true, false)
		pr.IncClassifiedError("api_error")
		pr.ObserveViewDuration("v1", time.Second)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncClassifiedError("api_error")

	w := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `envelope_classified_errors_total{category="api_error"} 1`)
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{99: "other", 100: "1xx", 204: "2xx", 302: "3xx", 421: "4xx", 599: "5xx", 600: "other"}
	for status, want := range tests {
		assert.Equal(t, want, StatusClass(status), "status %d", status)
	}
}

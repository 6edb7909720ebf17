package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("POST", "/api/v1/classify/text", 200, 120*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/classify/text", 200, 80*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/classify/file", 422, 5*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/v1/classify/text", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/v1/classify/file", "422")))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.ExtractionFailures.WithLabelValues("corrupted_file").Inc()
	m.ExtractionFailures.WithLabelValues("corrupted_file").Inc()
	m.Classifications.WithLabelValues("center").Inc()

	require.Equal(t, 2.0, testutil.ToFloat64(m.ExtractionFailures.WithLabelValues("corrupted_file")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Classifications.WithLabelValues("center")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.Classifications.WithLabelValues("left").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "echocheck_classifications_total")
	require.Contains(t, rec.Body.String(), `label="left"`)
}

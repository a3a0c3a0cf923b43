package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOp("get_expected_impact", "ok")
		m.ObserveQuery("admin_impacts", time.Now(), nil)
		m.ObserveInconsistency()
	})
}

func TestMetricsRecording(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveOp("get_expected_impact", "ok")
	m.ObserveOp("get_expected_impact", "ok")
	m.ObserveOp("get_worst_case", "no_data")
	m.ObserveQuery("admin_impacts", time.Now(), nil)
	m.ObserveQuery("admin_impacts", time.Now(), errors.New("timeout"))
	m.ObserveInconsistency()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EngineOps.WithLabelValues("get_expected_impact", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EngineOps.WithLabelValues("get_worst_case", "no_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreQueries.WithLabelValues("admin_impacts", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreQueries.WithLabelValues("admin_impacts", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Inconsistent))
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1:0")

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

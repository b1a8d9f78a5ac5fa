package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/internal/contracts"
)

func TestObserveDashboard(t *testing.T) {
	m := New()

	m.ObserveAssessment(&contracts.RiskAssessment{OverallScore: 47.5})
	m.ObserveDashboard(&contracts.WarningDashboard{
		HealthScore:   61,
		StressScore:   39,
		OverallStatus: contracts.SeverityOrange,
		Signals: []contracts.WarningSignal{
			{ID: "VIX", Severity: contracts.SeverityOrange},
			{ID: "HY_SPREAD", Severity: contracts.SeverityGreen},
		},
	})
	m.ObserveDashboard(nil)

	assert.Equal(t, 47.5, testutil.ToFloat64(m.RiskScore))
	assert.Equal(t, 39.0, testutil.ToFloat64(m.StressScore))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OverallStatus))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SignalSeverity.WithLabelValues("VIX")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SignalSeverity.WithLabelValues("HY_SPREAD")))
}

func TestObserveRunAndStage(t *testing.T) {
	m := New()

	m.ObserveRun(true)
	m.ObserveRun(true)
	m.ObserveRun(false)
	m.ObserveStage(contracts.StageRisk, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRun(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `capexwatch_pipeline_runs_total{status="success"} 1`)
}

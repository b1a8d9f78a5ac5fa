package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/internal/api/handlers"
	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/dataset"
	"github.com/wonny/capexwatch/internal/metrics"
	"github.com/wonny/capexwatch/internal/modelconfig"
	"github.com/wonny/capexwatch/internal/store"
	"github.com/wonny/capexwatch/pkg/config"
	"github.com/wonny/capexwatch/pkg/logger"
)

func testDocument() *dataset.Document {
	company := func(ticker string, capex, ocf, debt, cash, rev float64) dataset.CompanyDocument {
		return dataset.CompanyDocument{
			Ticker: ticker,
			Indicators: map[string]*float64{
				contracts.IndCapex:             dataset.Float(capex),
				contracts.IndPriorCapex:        dataset.Float(capex * 0.8),
				contracts.IndOperatingCashFlow: dataset.Float(ocf),
				contracts.IndTotalDebt:         dataset.Float(debt),
				contracts.IndPriorTotalDebt:    dataset.Float(debt * 0.95),
				contracts.IndCash:              dataset.Float(cash),
				contracts.IndRevenue:           dataset.Float(rev),
				contracts.IndPriorRevenue:      dataset.Float(rev * 0.9),
			},
		}
	}
	return &dataset.Document{
		AsOf:      "2024-12-31",
		BaseYear:  2024,
		Companies: []dataset.CompanyDocument{company("AMZN", 83, 116, 58, 78, 638), company("GOOGL", 53, 125, 11, 96, 350)},
		Macro: dataset.MacroDocument{Indicators: map[string]*float64{
			contracts.IndHighYieldSpread:       dataset.Float(3.0),
			contracts.IndInvestmentGradeSpread: dataset.Float(0.8),
			contracts.IndYieldCurve10Y2Y:       dataset.Float(0.3),
			contracts.IndVIX:                   dataset.Float(15),
			contracts.IndFedFundsRate:          dataset.Float(4.4),
			contracts.IndTechETFWeeklyReturn:   dataset.Float(0.5),
		}},
	}
}

type fixture struct {
	router  http.Handler
	hub     *Hub
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, apiCfg config.APIConfig) *fixture {
	t.Helper()
	m := metrics.New()
	o, err := brain.NewOrchestrator(modelconfig.Default(), dataset.StaticSource{Doc: testDocument()}, store.NewMemoryStore(), m, logger.NewNop())
	require.NoError(t, err)
	hub := NewHub(logger.NewNop())
	t.Cleanup(hub.Close)
	return &fixture{router: NewRouter(o, hub, m, apiCfg, logger.NewNop()), hub: hub, metrics: m}
}

var generous = config.APIConfig{RateLimit: 1000, RateBurst: 1000}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t, generous)

	rec := f.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"capexwatch-api"}`, rec.Body.String())
}

func TestDashboardLifecycle(t *testing.T) {
	f := newFixture(t, generous)

	rec := f.do("GET", "/api/dashboard", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do("POST", "/api/runs", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.NotEmpty(t, run.RunID)
	assert.Len(t, run.Manifest.Stages, 6)

	rec = f.do("GET", "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash handlers.DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, run.RunID, dash.RunID)
	assert.Equal(t, run.Status, dash.Dashboard.OverallStatus)

	rec = f.do("GET", "/api/runs/latest/health_report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, run.RunID, rec.Header().Get("X-Run-ID"))
	assert.Contains(t, rec.Body.String(), `"stress_score"`)

	rec = f.do("GET", "/api/runs/"+run.RunID+"/manifest", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestArtifactErrors(t *testing.T) {
	f := newFixture(t, generous)

	assert.Equal(t, http.StatusBadRequest, f.do("GET", "/api/runs/latest/bogus", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/runs/run_missing/risk_assessment", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/runs/latest/risk_assessment", "").Code)
}

func TestTriggerRun_Validation(t *testing.T) {
	f := newFixture(t, generous)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown stage", `{"from_stage":"S9"}`, http.StatusBadRequest},
		{"unknown preset", `{"scenarios":[{"preset":"moonshot"}]}`, http.StatusBadRequest},
		{"empty scenario", `{"scenarios":[{"name":"x"}]}`, http.StatusBadRequest},
		{"invalid parameters", `{"scenarios":[{"name":"x","parameters":{"years_to_simulate":-1}}]}`, http.StatusBadRequest},
		{"reentry without prior run", `{"from_stage":"S3"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, f.do("POST", "/api/runs", tt.body).Code)
		})
	}
}

func TestTriggerRun_Reentry(t *testing.T) {
	f := newFixture(t, generous)

	require.Equal(t, http.StatusCreated, f.do("POST", "/api/runs", "").Code)
	rec := f.do("POST", "/api/runs", `{"from_stage":"S4","reuse_run_id":"latest"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, contracts.StageHealth, run.Manifest.FromStage)
	assert.True(t, run.Manifest.Stages[0].Reused)
}

func TestScenarioEndpoints(t *testing.T) {
	f := newFixture(t, generous)

	rec := f.do("GET", "/api/scenarios/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var presets struct {
		Presets []handlers.PresetItem `json:"presets"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presets))
	assert.Equal(t, len(modelconfig.PresetOrder()), presets.Count)
	assert.Equal(t, modelconfig.PresetHistoricalTrend, presets.Presets[0].Name)

	rec = f.do("POST", "/api/scenarios/simulate", `{"preset":"pessimistic"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sim brain.Simulation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sim))
	assert.Equal(t, modelconfig.PresetPessimistic, sim.Scenario.Name)
	assert.Equal(t, 136.0, sim.Baseline.Capex)

	rec = f.do("POST", "/api/scenarios/simulate", `{"name":"what_if","parameters":{"capex_growth_rate":0.5,"revenue_growth_rate":0.02,"interest_rate":0.07,"debt_growth_rate":0.25,"years_to_simulate":2}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sim))
	assert.Equal(t, "what_if", sim.Scenario.Name)
	assert.Len(t, sim.Scenario.Projections, 2)

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/scenarios/simulate", `{"parameters":{"interest_rate":9,"years_to_simulate":1}}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/scenarios/simulate", `not json`).Code)
}

func TestSimulate_RateLimited(t *testing.T) {
	f := newFixture(t, config.APIConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, f.do("POST", "/api/scenarios/simulate", `{"preset":"base_case"}`).Code)
	rec := f.do("POST", "/api/scenarios/simulate", `{"preset":"base_case"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// reads are not limited
	assert.Equal(t, http.StatusOK, f.do("GET", "/api/scenarios/presets", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, generous)

	f.do("GET", "/api/scenarios/presets", "")
	rec := f.do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/scenarios/presets"`)
}

func TestDashboardWebSocket(t *testing.T) {
	f := newFixture(t, generous)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var run handlers.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg DashboardMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dashboard", msg.Type)
	assert.Equal(t, run.RunID, msg.RunID)
	assert.Equal(t, run.Status, msg.Dashboard.OverallStatus)

	// late subscribers get the last dashboard immediately
	late, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard", nil)
	require.NoError(t, err)
	defer late.Close()
	require.NoError(t, late.SetReadDeadline(time.Now().Add(5*time.Second)))
	var replay DashboardMessage
	require.NoError(t, late.ReadJSON(&replay))
	assert.Equal(t, run.RunID, replay.RunID)
}

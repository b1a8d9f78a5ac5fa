package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

func macro(hy, ig, vix, etf float64) contracts.MacroSnapshot {
	ind := func(name string, v float64) contracts.Indicator { return contracts.Real(name, v, "pct", "", "") }
	return contracts.MacroSnapshot{Indicators: map[string]contracts.Indicator{
		contracts.IndHighYieldSpread:       ind(contracts.IndHighYieldSpread, hy),
		contracts.IndInvestmentGradeSpread: ind(contracts.IndInvestmentGradeSpread, ig),
		contracts.IndVIX:                   ind(contracts.IndVIX, vix),
		contracts.IndTechETFWeeklyReturn:   ind(contracts.IndTechETFWeeklyReturn, etf),
	}}
}

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(modelconfig.Default())
	require.NoError(t, err)
	return e
}

func TestEvaluate_CalmMarkets(t *testing.T) {
	e := newEvaluator(t)
	a := &contracts.RiskAssessment{AsOf: "2024-12-31", OverallScore: 20}
	p := &contracts.SupplyDemandProjection{SustainabilityScore: 50}

	r := e.Evaluate(a, p, macro(4.0, 1.2, 20, 0))

	require.Len(t, r.Components, 4)
	assert.Equal(t, ComponentCredit, r.Components[0].Name)
	assert.InDelta(t, 72.25, r.Components[0].Score, 1e-9)
	assert.InDelta(t, 72.31, r.Components[1].Score, 1e-9)
	assert.InDelta(t, 80.0, r.Components[2].Score, 1e-9)
	assert.InDelta(t, 50.0, r.Components[3].Score, 1e-9)

	assert.InDelta(t, 71.25, r.HealthScore, 1e-9)
	assert.InDelta(t, 28.75, r.StressScore, 1e-9)
	assert.Equal(t, contracts.SeverityGreen, r.AlertLevel)
	assert.Equal(t, "Funding environment healthy", r.Status)
	assert.Equal(t, "2024-12-31", r.AsOf)

	var sum float64
	for _, c := range r.Components {
		sum += c.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEvaluate_StressedMarkets(t *testing.T) {
	e := newEvaluator(t)
	a := &contracts.RiskAssessment{OverallScore: 90}
	p := &contracts.SupplyDemandProjection{SustainabilityScore: 0}

	r := e.Evaluate(a, p, macro(10, 5.5, 48, -10))

	assert.Equal(t, 0.0, r.Components[0].Score)
	assert.InDelta(t, 3.75, r.Components[1].Score, 1e-9)
	assert.InDelta(t, 3.94, r.HealthScore, 1e-9)
	assert.InDelta(t, 96.06, r.StressScore, 1e-9)
	assert.Equal(t, contracts.SeverityRed, r.AlertLevel)
	assert.Equal(t, "High systemic risk detected", r.Status)
}

func TestEvaluate_WithoutProjectionRenormalizes(t *testing.T) {
	e := newEvaluator(t)

	r := e.Evaluate(&contracts.RiskAssessment{OverallScore: 20}, nil, macro(4.0, 1.2, 20, 0))

	require.Len(t, r.Components, 3)
	assert.InDelta(t, 75.0, r.HealthScore, 1e-9)
	assert.InDelta(t, r.HealthScore+r.StressScore, 100, 1e-9)
}

func TestAlertBands_LowerBoundInclusive(t *testing.T) {
	alerts := modelconfig.Default().Alerts

	tests := []struct {
		stress   float64
		expected contracts.Severity
	}{
		{0, contracts.SeverityGreen},
		{39.99, contracts.SeverityGreen},
		{40, contracts.SeverityYellow},
		{54.99, contracts.SeverityYellow},
		{55, contracts.SeverityOrange},
		{70, contracts.SeverityRed},
		{100, contracts.SeverityRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, alerts.Level(tt.stress), "stress %v", tt.stress)
	}
}

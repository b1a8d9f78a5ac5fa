package warning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

func snapshot(values map[string]float64) contracts.MacroSnapshot {
	m := contracts.MacroSnapshot{Indicators: map[string]contracts.Indicator{}}
	for k, v := range values {
		m.Indicators[k] = contracts.Real(k, v, "pct", "", "")
	}
	return m
}

func calmMacro() map[string]float64 {
	return map[string]float64{
		contracts.IndHighYieldSpread:       3.5,
		contracts.IndInvestmentGradeSpread: 1.0,
		contracts.IndYieldCurve10Y2Y:       0.5,
		contracts.IndVIX:                   15,
		contracts.IndFedFundsRate:          4.0,
		contracts.IndTechETFWeeklyReturn:   1.0,
	}
}

func signalByID(d *contracts.WarningDashboard, id string) (contracts.WarningSignal, bool) {
	for _, s := range d.Signals {
		if s.ID == id {
			return s, true
		}
	}
	return contracts.WarningSignal{}, false
}

func TestClassify(t *testing.T) {
	cfg := modelconfig.Default()
	hy := cfg.Signals[modelconfig.SignalHYSpread]
	curve := cfg.Signals[modelconfig.SignalYieldCurve]
	capex := cfg.Signals[modelconfig.SignalCapexToCashFlow]
	vix := cfg.Signals[modelconfig.SignalVIX]
	stress := cfg.Signals[modelconfig.SignalCompositeStress]

	tests := []struct {
		name     string
		rule     modelconfig.SignalRule
		value    float64
		expected contracts.Severity
		at       *float64
	}{
		{"hy below yellow", hy, 3.9, contracts.SeverityGreen, nil},
		{"hy at yellow", hy, 4.0, contracts.SeverityYellow, &hy.Yellow},
		{"hy at orange", hy, 5.5, contracts.SeverityOrange, &hy.Orange},
		{"hy beyond red", hy, 9.0, contracts.SeverityRed, &hy.Red},
		{"curve positive", curve, 0.3, contracts.SeverityGreen, nil},
		{"curve at yellow", curve, -0.2, contracts.SeverityYellow, &curve.Yellow},
		{"curve between orange and red", curve, -0.6, contracts.SeverityOrange, &curve.Orange},
		{"curve at red", curve, -0.75, contracts.SeverityRed, &curve.Red},
		// danger zones "> red" exclude the threshold itself
		{"capex/cash flow at 90%", capex, 0.90, contracts.SeverityOrange, &capex.Orange},
		{"capex/cash flow above 90%", capex, 0.9001, contracts.SeverityRed, &capex.Red},
		{"vix at 35", vix, 35, contracts.SeverityOrange, &vix.Orange},
		{"vix above 35", vix, 35.01, contracts.SeverityRed, &vix.Red},
		{"hy at red", hy, 7.0, contracts.SeverityOrange, &hy.Orange},
		// alert bands stay lower-bound inclusive
		{"stress at 70", stress, 70, contracts.SeverityRed, &stress.Red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, at := Classify(tt.value, tt.rule)
			assert.Equal(t, tt.expected, sev)
			assert.Equal(t, tt.at, at)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "VIX at normal levels (15.00)", Message("VIX", 15, contracts.SeverityGreen))
	assert.Equal(t, "VIX approaching concern levels (23.00)", Message("VIX", 23, contracts.SeverityYellow))
	assert.Equal(t, "VIX at warning levels (29.50) - monitor closely", Message("VIX", 29.5, contracts.SeverityOrange))
	assert.Equal(t, "VIX at critical levels (40.00) - immediate attention required", Message("VIX", 40, contracts.SeverityRed))
}

func TestEvaluate_NoInputsIsGreen(t *testing.T) {
	d := NewSystem(modelconfig.Default()).Evaluate(Input{})

	assert.Empty(t, d.Signals)
	assert.Equal(t, contracts.SeverityGreen, d.OverallStatus)
	require.Len(t, d.Counts, 4)
	for _, sev := range contracts.AllSeverities() {
		assert.Equal(t, 0, d.Counts[sev])
	}
	assert.Equal(t, []string{"Funding environment healthy - maintain standard monitoring"}, d.Recommendations)
}

func TestEvaluate_CalmEnvironment(t *testing.T) {
	in := Input{
		Assessment: &contracts.RiskAssessment{
			AsOf:           "2024-12-31",
			CategoryScores: contracts.CategoryScores{Consumption: 20, Supply: 25, Efficiency: 10},
			Companies: []contracts.CompanyRiskProfile{
				{Ticker: "AAA", OverallScore: 20, RiskLevel: contracts.RiskLow},
				{Ticker: "BBB", OverallScore: 30, RiskLevel: contracts.RiskLow},
			},
		},
		Scenarios: &contracts.ScenarioSet{Baseline: contracts.AggregateBaseline{
			CompanyCount: 2, Capex: 50, OperatingCashFlow: 100, Debt: 100, Cash: 100,
		}},
		Projection: &contracts.SupplyDemandProjection{BalanceRatio: contracts.BalanceRatio{Value: 2.0, State: contracts.RatioDefined}},
		Health:     &contracts.HealthReport{HealthScore: 80, StressScore: 20},
		Macro:      snapshot(calmMacro()),
	}

	d := NewSystem(modelconfig.Default()).Evaluate(in)

	// 16 signals minus the two optional ones without data
	assert.Len(t, d.Signals, 14)
	_, hasTED := signalByID(d, modelconfig.SignalTEDSpread)
	assert.False(t, hasTED)
	assert.Equal(t, contracts.SeverityGreen, d.OverallStatus)
	assert.Equal(t, 14, d.Counts[contracts.SeverityGreen])
	assert.Empty(t, d.ActiveWarnings)
	assert.Empty(t, d.WatchList)
	assert.Equal(t, "Funding environment healthy (0 red, 0 orange, 0 yellow, 14 green)", d.StatusMessage)
	assert.Equal(t, 80.0, d.HealthScore)
	assert.Equal(t, "2024-12-31", d.AsOf)

	// dashboard order follows the configured signal order
	assert.Equal(t, modelconfig.SignalCompositeStress, d.Signals[0].ID)
	assert.Equal(t, modelconfig.SignalSupplyDemandRatio, d.Signals[len(d.Signals)-1].ID)
}

func TestEvaluate_WorstOfLaw(t *testing.T) {
	sys := NewSystem(modelconfig.Default())

	macros := []map[string]float64{
		calmMacro(),
		{contracts.IndVIX: 23},
		{contracts.IndVIX: 23, contracts.IndHighYieldSpread: 6.0},
		{contracts.IndYieldCurve10Y2Y: -1.0, contracts.IndTEDSpread: 0.4},
		{contracts.IndAIStocksWeeklyReturn: -12, contracts.IndTechETFWeeklyReturn: -5},
	}
	for _, m := range macros {
		d := sys.Evaluate(Input{Macro: snapshot(m)})

		worst := contracts.SeverityGreen
		total := 0
		for _, s := range d.Signals {
			if s.Severity.WorseThan(worst) {
				worst = s.Severity
			}
		}
		for _, n := range d.Counts {
			total += n
		}
		assert.Equal(t, worst, d.OverallStatus, "%v", m)
		assert.Equal(t, len(d.Signals), total)
	}
}

func TestEvaluate_SingleRedRestGreen(t *testing.T) {
	m := calmMacro()
	m[contracts.IndHighYieldSpread] = 7.5

	d := NewSystem(modelconfig.Default()).Evaluate(Input{Macro: snapshot(m)})

	require.NotEmpty(t, d.Signals)
	for _, s := range d.Signals {
		if s.ID == modelconfig.SignalHYSpread {
			assert.Equal(t, contracts.SeverityRed, s.Severity)
			continue
		}
		assert.Equal(t, contracts.SeverityGreen, s.Severity, s.ID)
	}
	assert.Equal(t, contracts.SeverityRed, d.OverallStatus)
	assert.Equal(t, 1, d.Counts[contracts.SeverityRed])
	assert.Equal(t, 0, d.Counts[contracts.SeverityOrange])
	assert.Equal(t, 0, d.Counts[contracts.SeverityYellow])
	assert.Equal(t, len(d.Signals)-1, d.Counts[contracts.SeverityGreen])
	assert.Equal(t, []string{modelconfig.SignalHYSpread}, d.ActiveWarnings)
	assert.Empty(t, d.WatchList)
}

func TestEvaluate_TriageAndRecommendations(t *testing.T) {
	m := calmMacro()
	m[contracts.IndHighYieldSpread] = 7.5 // RED
	m[contracts.IndVIX] = 30              // ORANGE
	m[contracts.IndYieldCurve10Y2Y] = -0.3
	m[contracts.IndTEDSpread] = 0.2

	d := NewSystem(modelconfig.Default()).Evaluate(Input{Macro: snapshot(m)})

	assert.Equal(t, contracts.SeverityRed, d.OverallStatus)
	assert.Equal(t, []string{modelconfig.SignalHYSpread, modelconfig.SignalVIX}, d.ActiveWarnings)
	assert.Equal(t, []string{modelconfig.SignalYieldCurve}, d.WatchList)
	assert.Equal(t, 1, d.Counts[contracts.SeverityRed])
	assert.Equal(t, 1, d.Counts[contracts.SeverityOrange])
	assert.Equal(t, 1, d.Counts[contracts.SeverityYellow])
	assert.Contains(t, d.Recommendations, "HIGH ALERT: Review all funding positions immediately")
	assert.Contains(t, d.Recommendations, "Credit market stress detected - review debt refinancing plans")
	assert.Contains(t, d.Recommendations, "Market sentiment weak - equity financing may be challenging")

	ted, ok := signalByID(d, modelconfig.SignalTEDSpread)
	require.True(t, ok)
	assert.Equal(t, contracts.SeverityGreen, ted.Severity)
	assert.False(t, ted.Triggered)
}

func TestEvaluate_CompanySignals(t *testing.T) {
	a := &contracts.RiskAssessment{
		Companies: []contracts.CompanyRiskProfile{
			{Ticker: "AAA", OverallScore: 80, RiskLevel: contracts.RiskHigh},
			{Ticker: "BBB", OverallScore: 70, RiskLevel: contracts.RiskHigh, EstimatedCount: 1,
				Metrics: []contracts.MetricScore{{Name: modelconfig.MetricCapexToCashFlow, Category: contracts.CategoryConsumption, Estimated: true}}},
			{Ticker: "CCC", OverallScore: 30, RiskLevel: contracts.RiskLow},
		},
	}
	in := Input{
		Assessment: a,
		Scenarios:  &contracts.ScenarioSet{Baseline: contracts.AggregateBaseline{CompanyCount: 3, Capex: 90}},
	}

	d := NewSystem(modelconfig.Default()).Evaluate(in)

	count, ok := signalByID(d, modelconfig.SignalHighRiskCount)
	require.True(t, ok)
	assert.Equal(t, 2.0, count.Value)
	assert.Equal(t, contracts.SeverityOrange, count.Severity)
	assert.True(t, count.Estimated)

	avg, ok := signalByID(d, modelconfig.SignalCompanyRiskAvg)
	require.True(t, ok)
	assert.Equal(t, 60.0, avg.Value)
	assert.Equal(t, contracts.SeverityOrange, avg.Severity)

	// positive capex over zero operating cash flow
	capex, ok := signalByID(d, modelconfig.SignalCapexToCashFlow)
	require.True(t, ok)
	assert.Equal(t, contracts.SeverityRed, capex.Severity)
	assert.True(t, capex.Estimated)
	assert.Equal(t, 0.0, capex.Value)

	debt, ok := signalByID(d, modelconfig.SignalDebtToCash)
	require.True(t, ok)
	assert.Equal(t, contracts.SeverityGreen, debt.Severity)

	cons, ok := signalByID(d, modelconfig.SignalConsumptionRisk)
	require.True(t, ok)
	assert.True(t, cons.Estimated)
	supply, ok := signalByID(d, modelconfig.SignalSupplyRisk)
	require.True(t, ok)
	assert.False(t, supply.Estimated)
}

func TestEvaluate_SupplyDemandRatio(t *testing.T) {
	sys := NewSystem(modelconfig.Default())

	abundant := sys.Evaluate(Input{Projection: &contracts.SupplyDemandProjection{
		BalanceRatio: contracts.BalanceRatio{State: contracts.RatioUndefinedAbundant},
	}})
	sig, ok := signalByID(abundant, modelconfig.SignalSupplyDemandRatio)
	require.True(t, ok)
	assert.Equal(t, contracts.SeverityGreen, sig.Severity)
	assert.Contains(t, sig.Message, "supply abundant")

	short := sys.Evaluate(Input{Projection: &contracts.SupplyDemandProjection{
		BalanceRatio: contracts.BalanceRatio{Value: 0.9, State: contracts.RatioDefined},
	}})
	sig, ok = signalByID(short, modelconfig.SignalSupplyDemandRatio)
	require.True(t, ok)
	assert.Equal(t, contracts.SeverityRed, sig.Severity)
	assert.Equal(t, contracts.SeverityRed, short.OverallStatus)
	assert.Contains(t, short.Recommendations, "Funding supply is not keeping pace with capex demand - stress-test runway")
}

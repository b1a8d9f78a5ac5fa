package scenario

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/dataset"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

func baseline(capex, revenue, debt float64) contracts.AggregateBaseline {
	return contracts.AggregateBaseline{Capex: capex, Revenue: revenue, Debt: debt}
}

func params(capex, revenue, interest, debt float64, years int) contracts.ScenarioParameters {
	return contracts.ScenarioParameters{
		CapexGrowthRate:   capex,
		RevenueGrowthRate: revenue,
		InterestRate:      interest,
		DebtGrowthRate:    debt,
		YearsToSimulate:   years,
	}
}

func TestSimulate_FirstYearRecurrence(t *testing.T) {
	sim := NewSimulator(modelconfig.Default())

	r, err := sim.Simulate(baseline(200, 500, 150), Custom("three_year", params(0.25, 0.10, 0.055, 0.15, 3)))
	require.NoError(t, err)
	require.Len(t, r.Projections, 3)

	y1 := r.Projections[0]
	assert.Equal(t, 1, y1.Year)
	assert.InDelta(t, 250.0, y1.Capex, 1e-9)
	assert.InDelta(t, 550.0, y1.Revenue, 1e-9)
	assert.InDelta(t, 172.5, y1.Debt, 1e-9)
	assert.InDelta(t, 9.4875, y1.InterestBurden, 1e-9)
	assert.InDelta(t, 290.5125, y1.Gap, 1e-9)

	assert.Nil(t, r.CriticalYear)
	assert.Equal(t, CustomPreset, r.Preset)
}

func TestSimulate_StrictlyIncreasingWithPositiveGrowth(t *testing.T) {
	cfg := modelconfig.Default()
	sim := NewSimulator(cfg)
	sc, err := FromPreset(cfg, modelconfig.PresetBaseCase)
	require.NoError(t, err)

	r, err := sim.Simulate(baseline(200, 500, 150), sc)
	require.NoError(t, err)
	require.Len(t, r.Projections, 5)

	prev := contracts.YearProjection{Capex: 200, Revenue: 500, Debt: 150}
	for _, y := range r.Projections {
		assert.Greater(t, y.Capex, prev.Capex)
		assert.Greater(t, y.Revenue, prev.Revenue)
		assert.Greater(t, y.Debt, prev.Debt)
		prev = y
	}
}

func TestSimulate_ZeroYears(t *testing.T) {
	sim := NewSimulator(modelconfig.Default())

	r, err := sim.Simulate(baseline(200, 500, 150), Custom("", params(0.2, 0.1, 0.05, 0.1, 0)))
	require.NoError(t, err)
	assert.NotNil(t, r.Projections)
	assert.Empty(t, r.Projections)
	assert.Nil(t, r.CriticalYear)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, "custom: no years simulated", r.Summary)
}

func TestSimulate_InvalidParameters(t *testing.T) {
	sim := NewSimulator(modelconfig.Default())

	tests := []struct {
		name  string
		p     contracts.ScenarioParameters
		param string
	}{
		{"negative years", params(0.1, 0.1, 0.05, 0.1, -1), "years_to_simulate"},
		{"too many years", params(0.1, 0.1, 0.05, 0.1, 51), "years_to_simulate"},
		{"capex growth too high", params(2.5, 0.1, 0.05, 0.1, 5), "capex_growth_rate"},
		{"revenue collapse", params(0.1, -0.95, 0.05, 0.1, 5), "revenue_growth_rate"},
		{"debt growth NaN", params(0.1, 0.1, 0.05, math.NaN(), 5), "debt_growth_rate"},
		{"negative interest", params(0.1, 0.1, -0.01, 0.1, 5), "interest_rate"},
		{"interest too high", params(0.1, 0.1, 0.6, 0.1, 5), "interest_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := sim.Simulate(baseline(100, 100, 100), Custom("bad", tt.p))
			require.Error(t, err)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

			var pe *contracts.InvalidParameterError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.param, pe.Param)
		})
	}
}

func TestSimulate_NegativeGrowthIsNotClamped(t *testing.T) {
	sim := NewSimulator(modelconfig.Default())

	r, err := sim.Simulate(baseline(100, 50, 0), Custom("shrink", params(0.5, -0.5, 0, 0, 3)))
	require.NoError(t, err)
	assert.Less(t, r.Projections[2].Gap, -300.0)
	require.NotNil(t, r.CriticalYear)
	assert.Equal(t, 1, *r.CriticalYear)
}

func TestSimulate_CriticalYearAndWarnings(t *testing.T) {
	sim := NewSimulator(modelconfig.Default())
	b := baseline(100, 130, 0)
	b.BaseYear = 2024

	r, err := sim.Simulate(b, Custom("squeeze", params(0.2, 0.05, 0, 0, 3)))
	require.NoError(t, err)
	require.NotNil(t, r.CriticalYear)
	assert.Equal(t, 2, *r.CriticalYear)
	assert.Contains(t, r.Warnings, "Funding gap turns negative in 2026")
	assert.Contains(t, r.Summary, "gap turns negative in 2026")
}

func TestSimulate_GapErosionWarning(t *testing.T) {
	sim := NewSimulator(modelconfig.Default())

	r, err := sim.Simulate(baseline(100, 200, 0), Custom("erosion", params(0.3, 0.05, 0, 0, 3)))
	require.NoError(t, err)
	assert.Nil(t, r.CriticalYear)
	assert.Equal(t, []string{"Funding gap erodes by 85% over the horizon"}, r.Warnings)
	assert.Contains(t, r.Summary, "gap stays positive")
}

func TestFromPreset(t *testing.T) {
	cfg := modelconfig.Default()

	sc, err := FromPreset(cfg, modelconfig.PresetAIWinter)
	require.NoError(t, err)
	assert.Equal(t, params(0.30, -0.05, 0.07, 0.25, 5), sc.Params)

	_, err = FromPreset(cfg, "nuclear_winter")
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	names := []string{}
	for _, p := range Presets(cfg) {
		names = append(names, p.Name)
	}
	assert.Equal(t, modelconfig.PresetOrder(), names)
}

func TestRunAll(t *testing.T) {
	cfg := modelconfig.Default()
	sim := NewSimulator(cfg)

	set, err := sim.RunAll(baseline(200, 500, 150), contracts.MacroSnapshot{}, Custom("stress", params(0.4, 0, 0.08, 0.3, 10)))
	require.NoError(t, err)
	require.Len(t, set.Results, 6)
	assert.Equal(t, modelconfig.PresetBaseCase, set.Results[1].Name)
	assert.Equal(t, "stress", set.Results[5].Name)
	assert.Len(t, set.Results[5].Projections, 10)

	// presets do not influence each other
	alone, err := sim.Simulate(baseline(200, 500, 150), Presets(cfg)[3])
	require.NoError(t, err)
	assert.Equal(t, *alone, set.Results[3])

	found, ok := set.Find(modelconfig.PresetOptimistic)
	require.True(t, ok)
	assert.Equal(t, 0.20, found.Parameters.RevenueGrowthRate)
}

func TestDeriveHistorical(t *testing.T) {
	cfg := modelconfig.Default()
	cfg.Scenarios.DeriveHistorical = true
	macro := contracts.MacroSnapshot{Indicators: map[string]contracts.Indicator{
		contracts.IndFedFundsRate: contracts.Real(contracts.IndFedFundsRate, 5.25, "pct", "", ""),
	}}

	b := baseline(200, 500, 150)
	b.CapexGrowth, b.RevenueGrowth, b.DebtGrowth = 0.4, 0.08, 0.1

	sc := DeriveHistorical(cfg, b, macro)
	assert.InDelta(t, 0.4, sc.Params.CapexGrowthRate, 1e-12)
	assert.InDelta(t, 0.08, sc.Params.RevenueGrowthRate, 1e-12)
	assert.InDelta(t, 0.0525, sc.Params.InterestRate, 1e-12)
	assert.InDelta(t, 0.1, sc.Params.DebtGrowthRate, 1e-12)
	assert.Equal(t, 5, sc.Params.YearsToSimulate)

	b.CapexGrowth = 3.0
	assert.Equal(t, 2.0, DeriveHistorical(cfg, b, macro).Params.CapexGrowthRate)

	set, err := NewSimulator(cfg).RunAll(b, macro)
	require.NoError(t, err)
	assert.Equal(t, 2.0, set.Results[0].Parameters.CapexGrowthRate)
}

func TestBuildBaseline(t *testing.T) {
	doc := &dataset.Document{
		BaseYear: 2024,
		Companies: []dataset.CompanyDocument{
			{Ticker: "AAA", Indicators: map[string]*float64{
				contracts.IndCapex: dataset.Float(60), contracts.IndPriorCapex: dataset.Float(40),
				contracts.IndOperatingCashFlow: dataset.Float(100), contracts.IndTotalDebt: dataset.Float(50),
				contracts.IndPriorTotalDebt: dataset.Float(50), contracts.IndCash: dataset.Float(30),
				contracts.IndRevenue: dataset.Float(200), contracts.IndPriorRevenue: dataset.Float(180),
				contracts.IndMarketCap: dataset.Float(1000),
			}},
			{Ticker: "BBB", Indicators: map[string]*float64{
				contracts.IndCapex: dataset.Float(40), contracts.IndPriorCapex: dataset.Float(40),
				contracts.IndOperatingCashFlow: dataset.Float(30), contracts.IndTotalDebt: dataset.Float(70),
				contracts.IndPriorTotalDebt: dataset.Float(50), contracts.IndCash: dataset.Float(10),
				contracts.IndRevenue: dataset.Float(100), contracts.IndPriorRevenue: dataset.Float(100),
				contracts.IndFreeCashFlow: dataset.Float(-15),
			}},
		},
	}
	ds := dataset.NewResolver(modelconfig.Default()).Resolve(doc)

	b := BuildBaseline(ds)
	assert.Equal(t, 2024, b.BaseYear)
	assert.Equal(t, 2, b.CompanyCount)
	assert.Equal(t, 100.0, b.Capex)
	assert.Equal(t, 300.0, b.Revenue)
	assert.Equal(t, 120.0, b.Debt)
	assert.Equal(t, 40.0, b.Cash)
	assert.Equal(t, 130.0, b.OperatingCashFlow)
	assert.Equal(t, 25.0, b.FreeCashFlow) // (100−60) + reported −15
	assert.Equal(t, 1000.0, b.MarketCap)
	assert.InDelta(t, 0.25, b.CapexGrowth, 1e-12)
	assert.InDelta(t, 300.0/280.0-1, b.RevenueGrowth, 1e-12)
	assert.InDelta(t, 0.2, b.DebtGrowth, 1e-12)

	assert.Equal(t, contracts.AggregateBaseline{}, BuildBaseline(nil))
}

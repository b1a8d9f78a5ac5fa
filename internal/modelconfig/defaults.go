package modelconfig

import "github.com/wonny/capexwatch/internal/contracts"

// Metric names scored by the risk calculator
const (
	MetricCapexToCashFlow       = "capex_to_cash_flow"
	MetricCapexGrowth           = "capex_growth"
	MetricDebtToCash            = "debt_to_cash"
	MetricDebtGrowth            = "debt_growth"
	MetricHighYieldSpread       = contracts.IndHighYieldSpread
	MetricRevenueGrowth         = "revenue_growth"
	MetricDebtToRevenueGrowth   = "debt_to_revenue_growth"
	MetricVIX                   = contracts.IndVIX
	MetricInvestmentGradeSpread = contracts.IndInvestmentGradeSpread
	MetricFedFundsRate          = contracts.IndFedFundsRate
	MetricTechETFWeeklyReturn   = contracts.IndTechETFWeeklyReturn
)

// Warning signal IDs in dashboard order
const (
	SignalCompositeStress   = "COMPOSITE_STRESS"
	SignalConsumptionRisk   = "CONSUMPTION_RISK"
	SignalSupplyRisk        = "SUPPLY_RISK"
	SignalEfficiencyRisk    = "EFFICIENCY_RISK"
	SignalHYSpread          = "HY_SPREAD"
	SignalIGSpread          = "IG_SPREAD"
	SignalTEDSpread         = "TED_SPREAD"
	SignalYieldCurve        = "YIELD_CURVE"
	SignalVIX               = "VIX"
	SignalTechETFReturn     = "TECH_ETF_RETURN"
	SignalAIStocksReturn    = "AI_STOCKS_RETURN"
	SignalCapexToCashFlow   = "CAPEX_TO_CASH_FLOW"
	SignalDebtToCash        = "DEBT_TO_CASH"
	SignalCompanyRiskAvg    = "COMPANY_RISK_AVG"
	SignalHighRiskCount     = "HIGH_RISK_COUNT"
	SignalSupplyDemandRatio = "SUPPLY_DEMAND_RATIO"
)

// SignalOrder returns every signal ID in evaluation order
func SignalOrder() []string {
	return []string{
		SignalCompositeStress,
		SignalConsumptionRisk,
		SignalSupplyRisk,
		SignalEfficiencyRisk,
		SignalHYSpread,
		SignalIGSpread,
		SignalTEDSpread,
		SignalYieldCurve,
		SignalVIX,
		SignalTechETFReturn,
		SignalAIStocksReturn,
		SignalCapexToCashFlow,
		SignalDebtToCash,
		SignalCompanyRiskAvg,
		SignalHighRiskCount,
		SignalSupplyDemandRatio,
	}
}

// Scenario preset names
const (
	PresetHistoricalTrend = "historical_trend"
	PresetBaseCase        = "base_case"
	PresetOptimistic      = "optimistic"
	PresetPessimistic     = "pessimistic"
	PresetAIWinter        = "ai_winter"
)

// PresetOrder returns preset names in report order
func PresetOrder() []string {
	return []string{PresetHistoricalTrend, PresetBaseCase, PresetOptimistic, PresetPessimistic, PresetAIWinter}
}

func higher(normal, warning, danger float64) Threshold {
	return Threshold{Normal: normal, Warning: warning, Danger: danger, Direction: contracts.HigherIsWorse}
}

func lower(normal, warning, danger float64) Threshold {
	return Threshold{Normal: normal, Warning: warning, Danger: danger, Direction: contracts.LowerIsWorse}
}

func signal(name, category string, yellow, orange, red float64, dir contracts.Direction) SignalRule {
	return SignalRule{Name: name, Category: category, Yellow: yellow, Orange: orange, Red: red, Direction: dir}
}

// beyondRed marks a rule whose danger zone excludes the red threshold itself
func beyondRed(r SignalRule) SignalRule {
	r.RedExclusive = true
	return r
}

// Default returns the calibrated model configuration.
// Every call returns a fresh value; callers may not share maps between configs.
func Default() *Config {
	hi, lo := contracts.HigherIsWorse, contracts.LowerIsWorse

	ted := signal("TED Spread", "credit", 0.35, 0.50, 0.75, hi)
	ted.Optional = true
	aiStocks := signal("AI Stocks Weekly Return", "equity", -5, -10, -20, lo)
	aiStocks.Optional = true

	return &Config{
		Meta: Meta{ModelID: "ai-capex-funding-risk", Version: "1.0.0"},
		Scoring: Scoring{
			Interpolation: "linear",
			Anchors:       Anchors{Normal: 30, Warning: 60, Danger: 90},
			Step:          StepScores{Low: 20, BandLow: 30, BandHigh: 70, High: 80},
			RiskLevels:    RiskLevels{Medium: 40, High: 65},
		},
		Quality: Quality{HighMaxEstimatedPct: 10, MediumMaxEstimatedPct: 30},
		Thresholds: map[string]Threshold{
			// warning == danger: the sub-score steps from 60 at 0.90 to 90 just above it
			MetricCapexToCashFlow:       higher(0.70, 0.90, 0.90),
			MetricCapexGrowth:           higher(0.30, 0.50, 0.70),
			MetricDebtToCash:            higher(3.0, 5.0, 7.0),
			MetricDebtGrowth:            higher(0.10, 0.20, 0.35),
			MetricHighYieldSpread:       higher(4.0, 5.5, 7.0),
			MetricRevenueGrowth:         lower(0.10, 0.05, 0.00),
			MetricDebtToRevenueGrowth:   higher(1.0, 1.5, 2.0),
			MetricVIX:                   higher(22, 28, 35),
			MetricInvestmentGradeSpread: higher(1.5, 2.5, 3.5),
			MetricFedFundsRate:          higher(4.0, 6.0, 7.0),
			MetricTechETFWeeklyReturn:   lower(0, -4, -8),
		},
		Categories: Categories{
			Consumption: map[string]float64{MetricCapexToCashFlow: 0.6, MetricCapexGrowth: 0.4},
			Supply:      map[string]float64{MetricDebtToCash: 0.5, MetricDebtGrowth: 0.2, MetricHighYieldSpread: 0.3},
			Efficiency:  map[string]float64{MetricRevenueGrowth: 0.5, MetricDebtToRevenueGrowth: 0.5},
		},
		Blend:       Blend{Consumption: 0.40, Supply: 0.25, Efficiency: 0.35},
		Aggregation: Aggregation{Method: "unweighted"},
		Sentiment: Sentiment{
			Metrics:     []string{MetricVIX, MetricHighYieldSpread, MetricInvestmentGradeSpread},
			Neutral:     50,
			Sensitivity: 0.3,
			Cap:         15,
		},
		Macro: MacroEnvironment{
			Metrics:          []string{MetricFedFundsRate, MetricInvestmentGradeSpread, MetricHighYieldSpread},
			CautiousCount:    1,
			RestrictiveCount: 2,
		},
		Defaults: Defaults{
			Company: map[string]float64{
				contracts.IndCapex:             50,
				contracts.IndPriorCapex:        40,
				contracts.IndOperatingCashFlow: 80,
				contracts.IndTotalDebt:         50,
				contracts.IndPriorTotalDebt:    45,
				contracts.IndCash:              60,
				contracts.IndRevenue:           150,
				contracts.IndPriorRevenue:      135,
			},
			Macro: map[string]float64{
				contracts.IndHighYieldSpread:       4.0,
				contracts.IndInvestmentGradeSpread: 1.2,
				contracts.IndYieldCurve10Y2Y:       0.2,
				contracts.IndVIX:                   20,
				contracts.IndFedFundsRate:          5.0,
				contracts.IndTechETFWeeklyReturn:   0,
			},
		},
		Scenarios: Scenarios{
			MaxYears:             50,
			GrowthMin:            -0.9,
			GrowthMax:            2.0,
			InterestMin:          0,
			InterestMax:          0.5,
			ErosionWarningPct:    0.5,
			DeriveHistorical:     false,
			SupplyDemandScenario: PresetBaseCase,
			Presets: map[string]Preset{
				PresetHistoricalTrend: {CapexGrowth: 0.18, RevenueGrowth: 0.10, InterestRate: 0.05, DebtGrowth: 0.12, Years: 5},
				PresetBaseCase:        {CapexGrowth: 0.20, RevenueGrowth: 0.12, InterestRate: 0.05, DebtGrowth: 0.15, Years: 5},
				PresetOptimistic:      {CapexGrowth: 0.15, RevenueGrowth: 0.20, InterestRate: 0.04, DebtGrowth: 0.10, Years: 5},
				PresetPessimistic:     {CapexGrowth: 0.25, RevenueGrowth: 0.05, InterestRate: 0.065, DebtGrowth: 0.20, Years: 5},
				PresetAIWinter:        {CapexGrowth: 0.30, RevenueGrowth: -0.05, InterestRate: 0.07, DebtGrowth: 0.25, Years: 5},
			},
		},
		SupplyDemand: SupplyDemand{
			RatioFloor:     1.0,
			RatioCeiling:   2.0,
			TrendTolerance: 0.02,
			DebtHeadroom:   0.5,
			EquityRaise:    0.01,
			Multipliers:    ConditionMultipliers{Favorable: 1.10, Neutral: 1.00, Tight: 0.85},
			Intensity:      IntensityBands{VeryHigh: 0.8, High: 0.6, Moderate: 0.4},
		},
		Health: Health{Credit: 0.30, Equity: 0.25, Company: 0.30, SupplyDemand: 0.15},
		Alerts: Alerts{
			Yellow: 40,
			Orange: 55,
			Red:    70,
			Status: StatusMessages{
				Green:  "Funding environment healthy",
				Yellow: "Early warning signals present",
				Orange: "Multiple risk indicators elevated",
				Red:    "High systemic risk detected",
			},
		},
		Signals: map[string]SignalRule{
			SignalCompositeStress:   signal("Composite Funding Stress", "composite", 40, 55, 70, hi),
			SignalConsumptionRisk:   signal("Capital Consumption Risk", "company", 40, 55, 70, hi),
			SignalSupplyRisk:        signal("Capital Supply Risk", "company", 40, 55, 70, hi),
			SignalEfficiencyRisk:    signal("Capital Efficiency Risk", "company", 40, 55, 70, hi),
			SignalHYSpread:          beyondRed(signal("High Yield Spread", "credit", 4.0, 5.5, 7.0, hi)),
			SignalIGSpread:          signal("Investment Grade Spread", "credit", 1.5, 2.5, 3.5, hi),
			SignalTEDSpread:         ted,
			SignalYieldCurve:        signal("Yield Curve 10Y-2Y", "credit", -0.20, -0.50, -0.75, lo),
			SignalVIX:               beyondRed(signal("VIX Volatility Index", "equity", 22, 28, 35, hi)),
			SignalTechETFReturn:     signal("Tech ETF Weekly Return", "equity", -4, -8, -15, lo),
			SignalAIStocksReturn:    aiStocks,
			SignalCapexToCashFlow:   beyondRed(signal("Aggregate Capex/Cash Flow", "company", 0.70, 0.80, 0.90, hi)),
			SignalDebtToCash:        beyondRed(signal("Aggregate Debt/Cash", "company", 3.0, 5.0, 7.0, hi)),
			SignalCompanyRiskAvg:    signal("Average Company Risk", "company", 45, 55, 65, hi),
			SignalHighRiskCount:     signal("High Risk Company Count", "company", 1, 2, 3, hi),
			SignalSupplyDemandRatio: signal("Supply/Demand Balance Ratio", "supply_demand", 1.5, 1.2, 1.0, lo),
		},
	}
}

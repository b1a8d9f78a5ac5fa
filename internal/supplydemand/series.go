package supplydemand

import (
	"math"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// Supply condition labels, from the high-yield spread tier
const (
	ConditionFavorable = "favorable"
	ConditionNeutral   = "neutral"
	ConditionTight     = "tight"
)

// Demand intensity labels, from aggregate capex / operating cash flow
const (
	IntensityVeryHigh = "very_high"
	IntensityHigh     = "high"
	IntensityModerate = "moderate"
	IntensityLow      = "low"
)

// Point is demand and supply for one period (USD billions)
type Point struct {
	Year   int
	Demand float64
	Supply float64
}

// Series is the input of Analyze. Base is the current period; Points are the
// projected years and share the scenario horizon.
type Series struct {
	Scenario        string
	Conditions      string
	CapexToCashFlow float64
	Base            Point
	Points          []Point
}

// Conditions classifies funding conditions from the high-yield spread:
// below normal favorable, below warning neutral, otherwise tight.
func Conditions(cfg *modelconfig.Config, macro contracts.MacroSnapshot) string {
	t, ok := cfg.Thresholds[modelconfig.MetricHighYieldSpread]
	if !ok {
		return ConditionNeutral
	}
	hy := macro.Value(contracts.IndHighYieldSpread)
	switch {
	case hy < t.Normal:
		return ConditionFavorable
	case hy < t.Warning:
		return ConditionNeutral
	default:
		return ConditionTight
	}
}

// Capacity is the current-period funding capacity:
// cash + positive FCF + debt headroom + equity raise, scaled by conditions.
func Capacity(cfg *modelconfig.Config, b contracts.AggregateBaseline, conditions string) float64 {
	sd := cfg.SupplyDemand
	raw := b.Cash + math.Max(b.FreeCashFlow, 0) + sd.DebtHeadroom*b.Debt + sd.EquityRaise*b.MarketCap
	return raw * multiplier(sd.Multipliers, conditions)
}

func multiplier(m modelconfig.ConditionMultipliers, conditions string) float64 {
	switch conditions {
	case ConditionFavorable:
		return m.Favorable
	case ConditionTight:
		return m.Tight
	default:
		return m.Neutral
	}
}

// SeriesFromScenario pairs projected capex (demand) with funding capacity
// growing at the scenario's revenue growth rate (supply).
func SeriesFromScenario(cfg *modelconfig.Config, b contracts.AggregateBaseline, r *contracts.ScenarioResult, conditions string) Series {
	capacity := Capacity(cfg, b, conditions)
	s := Series{
		Conditions:      conditions,
		CapexToCashFlow: b.CapexToCashFlow(),
		Base:            Point{Year: 0, Demand: b.Capex, Supply: capacity},
		Points:          []Point{},
	}
	if r == nil {
		return s
	}

	s.Scenario = r.Name
	supply := capacity
	for i, y := range r.Projections {
		if i > 0 {
			supply *= 1 + r.Parameters.RevenueGrowthRate
		}
		s.Points = append(s.Points, Point{Year: y.Year, Demand: y.Capex, Supply: supply})
	}
	return s
}

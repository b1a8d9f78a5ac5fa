package supplydemand

import (
	"fmt"
	"math"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// =============================================================================
// Analyzer - S3 자금 수급 균형
// =============================================================================

// Analyzer turns a demand/supply series into a balance projection
type Analyzer struct {
	cfg *modelconfig.Config
}

// NewAnalyzer creates an analyzer with the configured ratio bands
func NewAnalyzer(cfg *modelconfig.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Ratio divides supply by demand. Zero or negative demand yields the
// "undefined, supply abundant" sentinel instead of a division.
func Ratio(supply, demand float64) contracts.BalanceRatio {
	if demand <= 0 {
		return contracts.BalanceRatio{State: contracts.RatioUndefinedAbundant}
	}
	return contracts.BalanceRatio{Value: round4(supply / demand), State: contracts.RatioDefined}
}

// Sustainability maps a balance ratio onto 0..100, linear between floor and ceiling
func (a *Analyzer) Sustainability(r contracts.BalanceRatio) float64 {
	if !r.IsDefined() {
		return 100
	}
	floor, ceiling := a.cfg.SupplyDemand.RatioFloor, a.cfg.SupplyDemand.RatioCeiling
	score := (r.Value - floor) / (ceiling - floor) * 100
	return round2(math.Max(0, math.Min(100, score)))
}

// Trend classifies the ratio trajectory. Strictly rising is IMPROVING, strictly
// falling is DETERIORATING; anything else, or a first→last move inside the
// tolerance band, is STABLE.
func (a *Analyzer) Trend(ratios []contracts.BalanceRatio) contracts.Trend {
	if len(ratios) < 2 {
		return contracts.TrendStable
	}
	for _, r := range ratios {
		if !r.IsDefined() {
			return contracts.TrendStable
		}
	}

	first, last := ratios[0].Value, ratios[len(ratios)-1].Value
	if first > 0 && math.Abs(last-first)/first <= a.cfg.SupplyDemand.TrendTolerance {
		return contracts.TrendStable
	}

	increasing, decreasing := true, true
	for i := 1; i < len(ratios); i++ {
		if ratios[i].Value <= ratios[i-1].Value {
			increasing = false
		}
		if ratios[i].Value >= ratios[i-1].Value {
			decreasing = false
		}
	}
	switch {
	case increasing:
		return contracts.TrendImproving
	case decreasing:
		return contracts.TrendDeteriorating
	default:
		return contracts.TrendStable
	}
}

// Intensity classifies capex / operating cash flow (strict lower bounds)
func (a *Analyzer) Intensity(capexToCashFlow float64) string {
	bands := a.cfg.SupplyDemand.Intensity
	switch {
	case capexToCashFlow > bands.VeryHigh:
		return IntensityVeryHigh
	case capexToCashFlow > bands.High:
		return IntensityHigh
	case capexToCashFlow > bands.Moderate:
		return IntensityModerate
	default:
		return IntensityLow
	}
}

// Analyze builds the supply-demand projection.
// The current ratio is the first projected year, or the base period when the
// horizon is empty.
func (a *Analyzer) Analyze(s Series) *contracts.SupplyDemandProjection {
	p := &contracts.SupplyDemandProjection{
		Scenario:         s.Scenario,
		DemandIntensity:  a.Intensity(s.CapexToCashFlow),
		SupplyConditions: s.Conditions,
		Years:            make([]contracts.SupplyDemandYear, 0, len(s.Points)),
	}

	ratios := make([]contracts.BalanceRatio, 0, len(s.Points))
	for _, pt := range s.Points {
		y := year(pt)
		p.Years = append(p.Years, y)
		ratios = append(ratios, y.BalanceRatio)
		if y.Status == contracts.GapDeficit && p.CriticalYear == nil {
			cy := pt.Year
			p.CriticalYear = &cy
		}
		if p.CriticalYear == nil {
			p.RunwayYears++
		}
	}

	current := s.Base
	if len(s.Points) > 0 {
		current = s.Points[0]
	}
	p.BalanceRatio = Ratio(current.Supply, current.Demand)
	p.SustainabilityScore = a.Sustainability(p.BalanceRatio)
	p.AnnualGap = round2(current.Supply - current.Demand)
	p.Trend = a.Trend(ratios)
	p.Findings = a.findings(p, s.CapexToCashFlow)
	return p
}

func year(pt Point) contracts.SupplyDemandYear {
	gap := pt.Supply - pt.Demand
	status := contracts.GapSurplus
	if gap < 0 {
		status = contracts.GapDeficit
	}
	return contracts.SupplyDemandYear{
		Year:         pt.Year,
		Demand:       round2(pt.Demand),
		Supply:       round2(pt.Supply),
		Gap:          round2(gap),
		BalanceRatio: Ratio(pt.Supply, pt.Demand),
		Status:       status,
	}
}

func (a *Analyzer) findings(p *contracts.SupplyDemandProjection, capexToCashFlow float64) []string {
	findings := []string{}

	r := p.BalanceRatio
	switch {
	case !r.IsDefined():
		findings = append(findings, "No projected capital demand: supply treated as abundant")
	case r.Value >= 1.5:
		findings = append(findings, fmt.Sprintf("Strong funding surplus: supply is %.1fx demand", r.Value))
	case r.Value >= 1.0:
		findings = append(findings, fmt.Sprintf("Adequate funding: supply slightly exceeds demand (%.1fx)", r.Value))
	default:
		findings = append(findings, fmt.Sprintf("Funding pressure: demand exceeds available supply (%.1fx)", r.Value))
	}

	if p.DemandIntensity == IntensityHigh || p.DemandIntensity == IntensityVeryHigh {
		findings = append(findings, fmt.Sprintf("High capital intensity: capex consuming %.0f%% of operating cash flow", capexToCashFlow*100))
	}

	switch p.SupplyConditions {
	case ConditionFavorable:
		findings = append(findings, "Credit markets supportive of corporate financing")
	case ConditionTight:
		findings = append(findings, "Credit conditions may constrain external funding")
	}

	if p.CriticalYear != nil && p.RunwayYears < 3 {
		findings = append(findings, fmt.Sprintf("Warning: at the current trajectory a funding gap emerges in year %d", *p.CriticalYear))
	}

	switch {
	case p.AnnualGap < 0:
		findings = append(findings, fmt.Sprintf("Annual funding gap of $%.0fB requires attention", -p.AnnualGap))
	case p.AnnualGap > 100:
		findings = append(findings, fmt.Sprintf("Comfortable funding buffer of $%.0fB annually", p.AnnualGap))
	}

	if p.Trend == contracts.TrendDeteriorating {
		findings = append(findings, "Balance ratio deteriorates across the projection horizon")
	}
	return findings
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

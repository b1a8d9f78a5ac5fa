package contracts

import "math"

// =============================================================================
// Indicator (S0 leaf value)
// =============================================================================

// ProvenanceKind distinguishes observed values from substituted defaults
type ProvenanceKind string

const (
	ProvenanceReal      ProvenanceKind = "real"
	ProvenanceEstimated ProvenanceKind = "estimated"
)

// Provenance travels with every indicator value.
// Estimated values always carry the reason they were substituted.
type Provenance struct {
	Kind   ProvenanceKind `json:"kind"`
	Reason string         `json:"reason,omitempty"`
}

// Indicator is a named numeric value for one period
// ⭐ SSOT: Real/Estimated 생성자를 통해서만 만든다 (불변 값 객체)
type Indicator struct {
	Name       string     `json:"name"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	Period     string     `json:"period,omitempty"`
	Source     string     `json:"source,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// Real builds an indicator backed by observed data
func Real(name string, value float64, unit, period, source string) Indicator {
	return Indicator{
		Name:       name,
		Value:      value,
		Unit:       unit,
		Period:     period,
		Source:     source,
		Provenance: Provenance{Kind: ProvenanceReal},
	}
}

// Estimated builds an indicator whose value is a configured fallback
func Estimated(name string, value float64, unit, reason string) Indicator {
	if reason == "" {
		reason = "missing"
	}
	return Indicator{
		Name:       name,
		Value:      value,
		Unit:       unit,
		Source:     "default",
		Provenance: Provenance{Kind: ProvenanceEstimated, Reason: reason},
	}
}

// IsEstimated reports whether the value is a substituted default
func (i Indicator) IsEstimated() bool {
	return i.Provenance.Kind == ProvenanceEstimated
}

// Clean returns the value with NaN, Inf and negatives clamped to zero
func (i Indicator) Clean() float64 {
	return NonNegative(i.Value)
}

// NonNegative clamps NaN, ±Inf and negative values to zero
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Finite maps NaN and ±Inf to zero, keeping the sign of ordinary values
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// =============================================================================
// Indicator names
// =============================================================================

// Company indicators (USD billions)
const (
	IndCapex             = "capex"
	IndPriorCapex        = "prior_capex"
	IndOperatingCashFlow = "operating_cash_flow"
	IndFreeCashFlow      = "free_cash_flow"
	IndTotalDebt         = "total_debt"
	IndPriorTotalDebt    = "prior_total_debt"
	IndCash              = "cash_and_equivalents"
	IndRevenue           = "revenue"
	IndPriorRevenue      = "prior_revenue"
	IndMarketCap         = "market_cap"
)

// Macro and market indicators (percent points unless noted)
const (
	IndHighYieldSpread       = "high_yield_spread"
	IndInvestmentGradeSpread = "investment_grade_spread"
	IndTEDSpread             = "ted_spread"
	IndYieldCurve10Y2Y       = "yield_curve_10y2y"
	IndVIX                   = "vix" // index points
	IndFedFundsRate          = "fed_funds_rate"
	IndTechETFWeeklyReturn   = "tech_etf_weekly_return"
	IndAIStocksWeeklyReturn  = "ai_stocks_weekly_return"
)

// RequiredCompanyIndicators are scored for every company and count toward completeness
func RequiredCompanyIndicators() []string {
	return []string{
		IndCapex,
		IndPriorCapex,
		IndOperatingCashFlow,
		IndTotalDebt,
		IndPriorTotalDebt,
		IndCash,
		IndRevenue,
		IndPriorRevenue,
	}
}

// RequiredMacroIndicators are always resolved, falling back to defaults
func RequiredMacroIndicators() []string {
	return []string{
		IndHighYieldSpread,
		IndInvestmentGradeSpread,
		IndYieldCurve10Y2Y,
		IndVIX,
		IndFedFundsRate,
		IndTechETFWeeklyReturn,
	}
}

// OptionalMacroIndicators feed warning signals only when present
func OptionalMacroIndicators() []string {
	return []string{
		IndTEDSpread,
		IndAIStocksWeeklyReturn,
	}
}

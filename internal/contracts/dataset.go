package contracts

// =============================================================================
// Resolved dataset (S0 output)
// =============================================================================

// CompanyRecord holds one company's indicators for the assessment period
type CompanyRecord struct {
	Ticker     string               `json:"ticker"`
	Name       string               `json:"name"`
	Indicators map[string]Indicator `json:"indicators"`
}

// Get returns the named indicator
func (c CompanyRecord) Get(name string) (Indicator, bool) {
	ind, ok := c.Indicators[name]
	return ind, ok
}

// Value returns the cleaned value of the named indicator (0 when absent)
func (c CompanyRecord) Value(name string) float64 {
	ind, ok := c.Indicators[name]
	if !ok {
		return 0
	}
	return ind.Clean()
}

// IsEstimated reports whether the named indicator is a substituted default
func (c CompanyRecord) IsEstimated(name string) bool {
	ind, ok := c.Indicators[name]
	return ok && ind.IsEstimated()
}

// FreeCashFlow returns the reported FCF, or OCF − capex when it was not reported.
// Unlike other indicators FCF may be negative.
func (c CompanyRecord) FreeCashFlow() float64 {
	if ind, ok := c.Indicators[IndFreeCashFlow]; ok {
		return Finite(ind.Value)
	}
	return c.Value(IndOperatingCashFlow) - c.Value(IndCapex)
}

// CapexGrowth is derived from current and prior capex
func (c CompanyRecord) CapexGrowth() float64 {
	return Growth(c.Value(IndCapex), c.Value(IndPriorCapex))
}

// RevenueGrowth is derived from current and prior revenue
func (c CompanyRecord) RevenueGrowth() float64 {
	return Growth(c.Value(IndRevenue), c.Value(IndPriorRevenue))
}

// DebtGrowth is derived from current and prior total debt
func (c CompanyRecord) DebtGrowth() float64 {
	return Growth(c.Value(IndTotalDebt), c.Value(IndPriorTotalDebt))
}

// Growth returns current/prior − 1; a non-positive prior yields 0
func Growth(current, prior float64) float64 {
	if prior <= 0 {
		return 0
	}
	return current/prior - 1
}

// MacroSnapshot holds macro, credit and market-sentiment indicators
type MacroSnapshot struct {
	Indicators map[string]Indicator `json:"indicators"`
}

// Get returns the named indicator
func (m MacroSnapshot) Get(name string) (Indicator, bool) {
	ind, ok := m.Indicators[name]
	return ind, ok
}

// Value returns the finite value of the named indicator (0 when absent).
// Spreads, returns and curve slopes may legitimately be negative.
func (m MacroSnapshot) Value(name string) float64 {
	ind, ok := m.Indicators[name]
	if !ok {
		return 0
	}
	return Finite(ind.Value)
}

// DataNote records a recovered data problem (missing or degenerate input)
type DataNote struct {
	Code    string `json:"code"`    // MISSING_DATA, INVALID_VALUE, UNKNOWN_INDICATOR
	Subject string `json:"subject"` // ticker or "macro"
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Dataset is the resolved indicator store consumed by every stage
// ⭐ SSOT: Companies는 ticker 오름차순 (결정적 출력)
type Dataset struct {
	AsOf      string          `json:"as_of"`
	BaseYear  int             `json:"base_year"`
	Companies []CompanyRecord `json:"companies"`
	Macro     MacroSnapshot   `json:"macro"`
	Notes     []DataNote      `json:"notes"`
}

// Company returns the record for a ticker
func (d *Dataset) Company(ticker string) (CompanyRecord, bool) {
	for _, c := range d.Companies {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return CompanyRecord{}, false
}

// =============================================================================
// Aggregate baseline (S2 input)
// =============================================================================

// AggregateBaseline sums company indicators into one composite entity.
// Built fresh every run from the dataset.
type AggregateBaseline struct {
	BaseYear          int     `json:"base_year"`
	CompanyCount      int     `json:"company_count"`
	Capex             float64 `json:"capex"`
	Revenue           float64 `json:"revenue"`
	Debt              float64 `json:"debt"`
	Cash              float64 `json:"cash"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	FreeCashFlow      float64 `json:"free_cash_flow"`
	MarketCap         float64 `json:"market_cap"`
	CapexGrowth       float64 `json:"capex_growth"`
	RevenueGrowth     float64 `json:"revenue_growth"`
	DebtGrowth        float64 `json:"debt_growth"`
}

// CapexToCashFlow is the aggregate consumption ratio (0 when OCF is zero)
func (b AggregateBaseline) CapexToCashFlow() float64 {
	if b.OperatingCashFlow <= 0 {
		return 0
	}
	return b.Capex / b.OperatingCashFlow
}

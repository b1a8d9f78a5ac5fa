package contracts

// RiskLevel classifies a 0-100 risk score
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// QualityRating is derived from the share of estimated indicators
type QualityRating string

const (
	QualityHigh   QualityRating = "high"
	QualityMedium QualityRating = "medium"
	QualityLow    QualityRating = "low"
)

// Severity is the alert level of a signal or dashboard, ordered GREEN < YELLOW < ORANGE < RED
type Severity string

const (
	SeverityGreen  Severity = "GREEN"
	SeverityYellow Severity = "YELLOW"
	SeverityOrange Severity = "ORANGE"
	SeverityRed    Severity = "RED"
)

// AllSeverities returns severities from least to most severe
func AllSeverities() []Severity {
	return []Severity{SeverityGreen, SeverityYellow, SeverityOrange, SeverityRed}
}

// Rank returns 0 (GREEN) .. 3 (RED); unknown values rank as GREEN
func (s Severity) Rank() int {
	switch s {
	case SeverityYellow:
		return 1
	case SeverityOrange:
		return 2
	case SeverityRed:
		return 3
	default:
		return 0
	}
}

// WorseThan reports whether s is strictly more severe than other
func (s Severity) WorseThan(other Severity) bool {
	return s.Rank() > other.Rank()
}

// MaxSeverity returns the most severe of the given severities (GREEN for none)
func MaxSeverity(severities ...Severity) Severity {
	worst := SeverityGreen
	for _, s := range severities {
		if s.WorseThan(worst) {
			worst = s
		}
	}
	return worst
}

// Trend classifies the trajectory of the balance ratio
type Trend string

const (
	TrendImproving     Trend = "IMPROVING"
	TrendStable        Trend = "STABLE"
	TrendDeteriorating Trend = "DETERIORATING"
)

// RatioState marks whether a balance ratio carries a usable number
type RatioState string

const (
	RatioDefined RatioState = "defined"
	// RatioUndefinedAbundant: demand is zero, supply is treated as abundant
	RatioUndefinedAbundant RatioState = "undefined_supply_abundant"
)

// GapStatus labels a projected year
type GapStatus string

const (
	GapSurplus GapStatus = "surplus"
	GapDeficit GapStatus = "deficit"
)

// Direction tells which side of a threshold table is risky
type Direction string

const (
	HigherIsWorse Direction = "higher_is_worse"
	LowerIsWorse  Direction = "lower_is_worse"
)

// Category names used in scores and signals
const (
	CategoryConsumption = "consumption"
	CategorySupply      = "supply"
	CategoryEfficiency  = "efficiency"
)

package risk

import (
	"math"

	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
)

// =============================================================================
// Curve - 임계값 → 0~100 서브스코어
// =============================================================================

// Curve maps a metric value onto a risk sub-score in [0,100].
// Implementations are monotonic non-decreasing in the risk direction.
type Curve interface {
	Score(value float64, t modelconfig.Threshold) float64
	Name() string
}

// NewCurve selects the curve named by scoring.interpolation
func NewCurve(s modelconfig.Scoring) (Curve, error) {
	switch s.Interpolation {
	case "linear", "":
		return LinearCurve{Anchors: s.Anchors}, nil
	case "step":
		return StepCurve{Scores: s.Step}, nil
	default:
		return nil, &contracts.ConfigurationError{Field: "scoring.interpolation", Message: "unknown curve " + s.Interpolation}
	}
}

// orient mirrors lower-is-worse tables so that larger always means riskier
func orient(x float64, t modelconfig.Threshold) (v, normal, warning, danger float64) {
	if t.Direction == contracts.LowerIsWorse {
		return -x, -t.Normal, -t.Warning, -t.Danger
	}
	return x, t.Normal, t.Warning, t.Danger
}

// LinearCurve interpolates piecewise between
// floor→0, normal→Anchors.Normal, warning→Anchors.Warning, danger→Anchors.Danger, danger+span→100
// where span = danger − normal and floor = normal − span.
type LinearCurve struct {
	Anchors modelconfig.Anchors
}

// Name implements Curve
func (LinearCurve) Name() string { return "linear" }

// Score implements Curve
func (c LinearCurve) Score(value float64, t modelconfig.Threshold) float64 {
	if math.IsNaN(value) {
		return 0
	}
	x, normal, warning, danger := orient(value, t)
	if math.IsInf(x, 1) {
		return 100
	}
	if math.IsInf(x, -1) {
		return 0
	}

	span := danger - normal
	floor := normal - span
	ceiling := danger + span
	a := c.Anchors

	var score float64
	switch {
	case x <= floor:
		score = 0
	case x <= normal:
		score = lerp(x, floor, normal, 0, a.Normal)
	case x <= warning:
		// warning == danger: the warning anchor wins at the shared boundary
		score = lerp(x, normal, warning, a.Normal, a.Warning)
	case x <= danger:
		score = lerp(x, warning, danger, a.Warning, a.Danger)
	case x < ceiling:
		score = lerp(x, danger, ceiling, a.Danger, 100)
	default:
		score = 100
	}
	return clamp(score, 0, 100)
}

// StepCurve is the legacy three-tier scorer: flat Low below normal,
// BandLow..BandHigh between normal and danger, flat High beyond danger.
type StepCurve struct {
	Scores modelconfig.StepScores
}

// Name implements Curve
func (StepCurve) Name() string { return "step" }

// Score implements Curve
func (c StepCurve) Score(value float64, t modelconfig.Threshold) float64 {
	if math.IsNaN(value) {
		return 0
	}
	x, normal, _, danger := orient(value, t)
	s := c.Scores
	switch {
	case x < normal:
		return s.Low
	case x >= danger:
		return s.High
	default:
		return clamp(lerp(x, normal, danger, s.BandLow, s.BandHigh), 0, 100)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y1
	}
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds to two decimals (all published scores)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ratio divides with the zero-denominator convention:
// positive numerator → +Inf, zero numerator → 0
func ratio(num, den float64) float64 {
	if den <= 0 {
		if num > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return num / den
}

// debtToRevenueGrowth compares debt growth to revenue growth.
// Revenue growth ≤ 0 with rising debt is unbounded.
func debtToRevenueGrowth(debtGrowth, revenueGrowth float64) float64 {
	if revenueGrowth <= 0 {
		if debtGrowth > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return debtGrowth / revenueGrowth
}

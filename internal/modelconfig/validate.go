package modelconfig

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/capexwatch/internal/contracts"
)

const weightEpsilon = 1e-6

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	// 에러 필드명을 YAML 키로 표시
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks all required constraints.
// 실패 시 *contracts.ConfigurationError 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if cfg == nil {
		return &contracts.ConfigurationError{Field: "config", Message: "required"}
	}

	// === Struct tags (ranges, enums, field ordering) ===
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			msg := fmt.Sprintf("failed '%s' check", fe.Tag())
			if fe.Param() != "" {
				msg = fmt.Sprintf("failed '%s=%s' check (got %v)", fe.Tag(), fe.Param(), fe.Value())
			}
			return &contracts.ConfigurationError{Field: field, Message: msg}
		}
		return &contracts.ConfigurationError{Field: "config", Message: err.Error()}
	}

	// === Scoring ===
	a := cfg.Scoring.Anchors
	if !(a.Normal < a.Warning && a.Warning < a.Danger) {
		return &contracts.ConfigurationError{Field: "scoring.anchors", Message: "must satisfy normal < warning < danger"}
	}
	st := cfg.Scoring.Step
	if !(st.Low <= st.BandLow && st.BandLow < st.BandHigh && st.BandHigh <= st.High) {
		return &contracts.ConfigurationError{Field: "scoring.step", Message: "must satisfy low <= band_low < band_high <= high"}
	}
	if cfg.Scoring.RiskLevels.Medium >= cfg.Scoring.RiskLevels.High {
		return &contracts.ConfigurationError{Field: "scoring.risk_levels", Message: "medium must be < high"}
	}
	if cfg.Quality.HighMaxEstimatedPct > cfg.Quality.MediumMaxEstimatedPct {
		return &contracts.ConfigurationError{Field: "quality", Message: "high_max_estimated_pct must be <= medium_max_estimated_pct"}
	}

	// === Thresholds ===
	for _, name := range sortedKeys(cfg.Thresholds) {
		if err := validateThreshold(name, cfg.Thresholds[name]); err != nil {
			return err
		}
	}

	// === Categories & blend ===
	for _, category := range []string{contracts.CategoryConsumption, contracts.CategorySupply, contracts.CategoryEfficiency} {
		weights := cfg.Categories.ByName(category)
		field := "categories." + category
		if err := validateWeightsSum(weights); err != nil {
			return &contracts.ConfigurationError{Field: field, Message: err.Error()}
		}
		for metric := range weights {
			if _, ok := cfg.Thresholds[metric]; !ok {
				return &contracts.ConfigurationError{Field: field, Message: fmt.Sprintf("metric %q has no thresholds", metric)}
			}
		}
	}
	if math.Abs(cfg.Blend.Sum()-1.0) > weightEpsilon {
		return &contracts.ConfigurationError{Field: "blend", Message: fmt.Sprintf("must sum to 1.00, got %.4f", cfg.Blend.Sum())}
	}

	// === Sentiment / macro environment ===
	for _, metric := range cfg.Sentiment.Metrics {
		if _, ok := cfg.Thresholds[metric]; !ok {
			return &contracts.ConfigurationError{Field: "sentiment.metrics", Message: fmt.Sprintf("metric %q has no thresholds", metric)}
		}
	}
	for _, metric := range cfg.Macro.Metrics {
		if _, ok := cfg.Thresholds[metric]; !ok {
			return &contracts.ConfigurationError{Field: "macro_environment.metrics", Message: fmt.Sprintf("metric %q has no thresholds", metric)}
		}
	}
	if cfg.Macro.RestrictiveCount > len(cfg.Macro.Metrics) {
		return &contracts.ConfigurationError{Field: "macro_environment.restrictive_count", Message: "exceeds number of metrics"}
	}

	// === Defaults ===
	for _, name := range contracts.RequiredCompanyIndicators() {
		if _, ok := cfg.Defaults.Company[name]; !ok {
			return &contracts.ConfigurationError{Field: "defaults.company." + name, Message: "required"}
		}
	}
	for _, name := range contracts.RequiredMacroIndicators() {
		if _, ok := cfg.Defaults.Macro[name]; !ok {
			return &contracts.ConfigurationError{Field: "defaults.macro." + name, Message: "required"}
		}
	}

	// === Scenarios ===
	for _, name := range PresetOrder() {
		if _, ok := cfg.Scenarios.Presets[name]; !ok {
			return &contracts.ConfigurationError{Field: "scenarios.presets." + name, Message: "required"}
		}
	}
	for _, name := range sortedKeys(cfg.Scenarios.Presets) {
		if err := validatePreset(cfg.Scenarios, name, cfg.Scenarios.Presets[name]); err != nil {
			return err
		}
	}
	if _, ok := cfg.Scenarios.Presets[cfg.Scenarios.SupplyDemandScenario]; !ok {
		return &contracts.ConfigurationError{
			Field:   "scenarios.supply_demand_scenario",
			Message: fmt.Sprintf("unknown preset %q", cfg.Scenarios.SupplyDemandScenario),
		}
	}

	// === Health ===
	if math.Abs(cfg.Health.Sum()-1.0) > weightEpsilon {
		return &contracts.ConfigurationError{Field: "health", Message: fmt.Sprintf("must sum to 1.00, got %.4f", cfg.Health.Sum())}
	}

	// === Signals ===
	known := make(map[string]bool)
	for _, id := range SignalOrder() {
		known[id] = true
		if _, ok := cfg.Signals[id]; !ok {
			return &contracts.ConfigurationError{Field: "signals." + id, Message: "required"}
		}
	}
	for _, id := range sortedKeys(cfg.Signals) {
		if !known[id] {
			return &contracts.ConfigurationError{Field: "signals." + id, Message: "unknown signal"}
		}
		if err := validateSignal(id, cfg.Signals[id]); err != nil {
			return err
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Scoring.Interpolation == "step" {
		warnings = append(warnings, Warning{
			Code:    "STEP_INTERPOLATION",
			Message: "step curve is flat inside tiers: sub-scores barely move between thresholds",
		})
	}
	if cfg.Aggregation.Method == "market_cap" {
		warnings = append(warnings, Warning{
			Code:    "MARKET_CAP_AGGREGATION",
			Message: "market_cap aggregation falls back to unweighted when market caps are missing",
		})
	}
	if cfg.Sentiment.Cap > 25 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_SENTIMENT_CAP",
			Message: fmt.Sprintf("sentiment adjustment cap %.0f can dominate company fundamentals", cfg.Sentiment.Cap),
		})
	}
	for _, name := range sortedKeys(cfg.Scenarios.Presets) {
		if cfg.Scenarios.Presets[name].Years > 20 {
			warnings = append(warnings, Warning{
				Code:    "LONG_HORIZON",
				Message: fmt.Sprintf("preset %s projects %d years: compounding dominates", name, cfg.Scenarios.Presets[name].Years),
			})
		}
	}

	return warnings
}

// === Helper Functions ===

func validateThreshold(name string, t Threshold) error {
	field := "thresholds." + name
	switch t.Direction {
	case contracts.HigherIsWorse:
		if !(t.Normal < t.Warning && t.Warning <= t.Danger) {
			return &contracts.ConfigurationError{Field: field, Message: "must satisfy normal < warning <= danger"}
		}
	case contracts.LowerIsWorse:
		if !(t.Normal > t.Warning && t.Warning >= t.Danger) {
			return &contracts.ConfigurationError{Field: field, Message: "must satisfy normal > warning >= danger"}
		}
	}
	return nil
}

func validateSignal(id string, r SignalRule) error {
	field := "signals." + id
	switch r.Direction {
	case contracts.HigherIsWorse:
		if !(r.Yellow < r.Orange && r.Orange < r.Red) {
			return &contracts.ConfigurationError{Field: field, Message: "must satisfy yellow < orange < red"}
		}
	case contracts.LowerIsWorse:
		if !(r.Yellow > r.Orange && r.Orange > r.Red) {
			return &contracts.ConfigurationError{Field: field, Message: "must satisfy yellow > orange > red"}
		}
	}
	return nil
}

func validatePreset(s Scenarios, name string, p Preset) error {
	field := "scenarios.presets." + name
	if p.Years > s.MaxYears {
		return &contracts.ConfigurationError{Field: field + ".years", Message: fmt.Sprintf("must be <= max_years=%d", s.MaxYears)}
	}
	for _, g := range []struct {
		key string
		v   float64
	}{
		{"capex_growth", p.CapexGrowth},
		{"revenue_growth", p.RevenueGrowth},
		{"debt_growth", p.DebtGrowth},
	} {
		if g.v < s.GrowthMin || g.v > s.GrowthMax {
			return &contracts.ConfigurationError{
				Field:   field + "." + g.key,
				Message: fmt.Sprintf("must be in [%.2f, %.2f]", s.GrowthMin, s.GrowthMax),
			}
		}
	}
	if p.InterestRate < s.InterestMin || p.InterestRate > s.InterestMax {
		return &contracts.ConfigurationError{
			Field:   field + ".interest_rate",
			Message: fmt.Sprintf("must be in [%.2f, %.2f]", s.InterestMin, s.InterestMax),
		}
	}
	return nil
}

func validateWeightsSum(weights map[string]float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("must sum to 1.00, got %.4f", sum)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

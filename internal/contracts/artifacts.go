package contracts

// ⭐ SSOT: 파이프라인 산출물(Artifact) 타입은 여기서만 정의
// Every artifact is produced by exactly one stage and is read-only downstream.

// =============================================================================
// S1: Risk
// =============================================================================

// CategoryScores holds the three risk categories, each in [0,100]
type CategoryScores struct {
	Consumption float64 `json:"consumption"`
	Supply      float64 `json:"supply"`
	Efficiency  float64 `json:"efficiency"`
}

// MetricScore is one scored ratio.
// Unbounded is set when the ratio diverged (zero denominator); Value is then 0.
type MetricScore struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Value     float64   `json:"value"`
	Unbounded bool      `json:"unbounded,omitempty"`
	SubScore  float64   `json:"sub_score"`
	Weight    float64   `json:"weight"`
	Level     RiskLevel `json:"level"`
	Estimated bool      `json:"estimated"`
}

// CompanyRiskProfile is the per-company risk output
type CompanyRiskProfile struct {
	Ticker         string         `json:"ticker"`
	Name           string         `json:"name"`
	OverallScore   float64        `json:"overall_score"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	CategoryScores CategoryScores `json:"category_scores"`
	Quality        QualityRating  `json:"quality"`
	EstimatedCount int            `json:"estimated_count"`
	IndicatorCount int            `json:"indicator_count"`
	MarketCap      float64        `json:"market_cap"`
	Metrics        []MetricScore  `json:"metrics"`
	Summary        string         `json:"summary"`
}

// MacroEnvironment summarizes the funding backdrop
type MacroEnvironment struct {
	Environment string        `json:"environment"` // favorable, cautious, restrictive
	Sentiment   float64       `json:"sentiment"`   // mean sentiment sub-score
	Metrics     []MetricScore `json:"metrics"`
	RiskFactors []string      `json:"risk_factors"`
}

// RiskAssessment is the S1 artifact.
// No wall-clock field: identical input yields byte-identical output.
type RiskAssessment struct {
	AsOf                string               `json:"as_of"`
	OverallScore        float64              `json:"overall_score"`
	RiskLevel           RiskLevel            `json:"risk_level"`
	BaseScore           float64              `json:"base_score"`
	SentimentAdjustment float64              `json:"sentiment_adjustment"`
	CategoryScores      CategoryScores       `json:"category_scores"`
	DataCompleteness    float64              `json:"data_completeness_pct"`
	EstimatedCount      int                  `json:"estimated_count"`
	IndicatorCount      int                  `json:"indicator_count"`
	Aggregation         string               `json:"aggregation"`
	Interpolation       string               `json:"interpolation"`
	Companies           []CompanyRiskProfile `json:"companies"`
	Macro               MacroEnvironment     `json:"macro"`
	KeyFindings         []string             `json:"key_findings"`
	Recommendations     []string             `json:"recommendations"`
	ConfigHash          string               `json:"config_hash"`
}

// CountByLevel tallies company profiles per risk level
func (a *RiskAssessment) CountByLevel(level RiskLevel) int {
	n := 0
	for _, c := range a.Companies {
		if c.RiskLevel == level {
			n++
		}
	}
	return n
}

// =============================================================================
// S2: Scenarios
// =============================================================================

// ScenarioParameters is an immutable growth assumption set (rates as decimals)
type ScenarioParameters struct {
	CapexGrowthRate   float64 `json:"capex_growth_rate"`
	RevenueGrowthRate float64 `json:"revenue_growth_rate"`
	InterestRate      float64 `json:"interest_rate"`
	DebtGrowthRate    float64 `json:"debt_growth_rate"`
	YearsToSimulate   int     `json:"years_to_simulate"`
}

// YearProjection is one projected year
type YearProjection struct {
	Year           int     `json:"year"`
	Capex          float64 `json:"capex"`
	Revenue        float64 `json:"revenue"`
	Debt           float64 `json:"debt"`
	InterestBurden float64 `json:"interest_burden"`
	Gap            float64 `json:"gap"`
}

// ScenarioResult is the projection of one scenario
type ScenarioResult struct {
	Name         string             `json:"name"`
	Preset       string             `json:"preset"`
	Parameters   ScenarioParameters `json:"parameters"`
	BaseYear     int                `json:"base_year"`
	Projections  []YearProjection   `json:"projections"`
	CriticalYear *int               `json:"critical_year"`
	Summary      string             `json:"summary"`
	Warnings     []string           `json:"warnings"`
}

// ScenarioSet is the S2 artifact: the shared baseline and every simulated scenario
type ScenarioSet struct {
	Baseline AggregateBaseline `json:"baseline"`
	Results  []ScenarioResult  `json:"results"`
}

// Find returns the scenario with the given name
func (s *ScenarioSet) Find(name string) (ScenarioResult, bool) {
	for _, r := range s.Results {
		if r.Name == name {
			return r, true
		}
	}
	return ScenarioResult{}, false
}

// =============================================================================
// S3: Supply-Demand
// =============================================================================

// BalanceRatio is supply/demand, or a sentinel state when demand is zero
type BalanceRatio struct {
	Value float64    `json:"value"`
	State RatioState `json:"state"`
}

// IsDefined reports whether Value is meaningful
func (r BalanceRatio) IsDefined() bool {
	return r.State == RatioDefined
}

// SupplyDemandYear is one year of the balance projection
type SupplyDemandYear struct {
	Year         int          `json:"year"`
	Demand       float64      `json:"demand"`
	Supply       float64      `json:"supply"`
	Gap          float64      `json:"gap"`
	BalanceRatio BalanceRatio `json:"balance_ratio"`
	Status       GapStatus    `json:"status"`
}

// SupplyDemandProjection is the S3 artifact
type SupplyDemandProjection struct {
	Scenario            string             `json:"scenario"`
	BalanceRatio        BalanceRatio       `json:"balance_ratio"`
	SustainabilityScore float64            `json:"sustainability_score"`
	AnnualGap           float64            `json:"annual_gap"`
	Trend               Trend              `json:"trend"`
	Years               []SupplyDemandYear `json:"years"`
	DemandIntensity     string             `json:"demand_intensity"`
	SupplyConditions    string             `json:"supply_conditions"`
	RunwayYears         int                `json:"runway_years"`
	CriticalYear        *int               `json:"critical_year"`
	Findings            []string           `json:"findings"`
}

// =============================================================================
// S4: Funding health
// =============================================================================

// HealthComponent is one weighted input of the composite
type HealthComponent struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"` // higher = healthier
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// HealthReport is the S4 artifact
type HealthReport struct {
	AsOf        string            `json:"as_of"`
	HealthScore float64           `json:"health_score"` // higher = healthier
	StressScore float64           `json:"stress_score"` // 100 − health, higher = worse
	AlertLevel  Severity          `json:"alert_level"`
	Status      string            `json:"status"`
	Components  []HealthComponent `json:"components"`
}

// =============================================================================
// S5: Warnings
// =============================================================================

// SignalThresholds are the YELLOW/ORANGE/RED boundaries of a signal
type SignalThresholds struct {
	Yellow float64 `json:"yellow"`
	Orange float64 `json:"orange"`
	Red    float64 `json:"red"`
}

// WarningSignal is generated fresh each evaluation and never mutated
type WarningSignal struct {
	ID          string           `json:"id"`
	Category    string           `json:"category"` // credit, equity, company, supply_demand, composite
	Name        string           `json:"name"`
	Metric      string           `json:"metric"`
	Value       float64          `json:"value"`
	Direction   Direction        `json:"direction"`
	Thresholds  SignalThresholds `json:"thresholds"`
	Severity    Severity         `json:"severity"`
	Triggered   bool             `json:"triggered"`
	TriggeredAt *float64         `json:"triggered_at"` // threshold that was crossed
	Estimated   bool             `json:"estimated"`
	Message     string           `json:"message"`
}

// WarningDashboard is the terminal artifact of the pipeline
type WarningDashboard struct {
	AsOf            string           `json:"as_of"`
	OverallStatus   Severity         `json:"overall_status"`
	HealthScore     float64          `json:"health_score"`
	StressScore     float64          `json:"stress_score"`
	StatusMessage   string           `json:"status_message"`
	Signals         []WarningSignal  `json:"signals"`
	Counts          map[Severity]int `json:"counts"`
	ActiveWarnings  []string         `json:"active_warnings"`
	WatchList       []string         `json:"watch_list"`
	Recommendations []string         `json:"recommendations"`
}

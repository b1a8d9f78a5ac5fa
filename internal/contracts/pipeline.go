package contracts

import (
	"fmt"
	"strings"
)

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 아티팩트, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Indicators  Risk  Scenarios  SupplyDemand  Health  Warnings

// Stage represents a pipeline stage
type Stage string

const (
	// StageIndicators S0: 지표 로드 및 기본값 보정
	// 위치: internal/dataset/
	StageIndicators Stage = "S0_INDICATORS"

	// StageRisk S1: 기업별/종합 리스크 점수
	// 위치: internal/risk/
	StageRisk Stage = "S1_RISK"

	// StageScenarios S2: 다년 시나리오 시뮬레이션
	// 위치: internal/scenario/
	StageScenarios Stage = "S2_SCENARIOS"

	// StageSupplyDemand S3: 자금 수급 균형 분석
	// 위치: internal/supplydemand/
	StageSupplyDemand Stage = "S3_SUPPLY_DEMAND"

	// StageHealth S4: 자금조달 건전성 종합 지수
	// 위치: internal/health/
	StageHealth Stage = "S4_HEALTH"

	// StageWarnings S5: 조기경보 신호 및 대시보드
	// 위치: internal/warning/
	StageWarnings Stage = "S5_WARNINGS"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	if i := s.Index(); i >= 0 {
		return fmt.Sprintf("S%d", i)
	}
	return "UNKNOWN"
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageIndicators:
		return "지표 로드/기본값 보정"
	case StageRisk:
		return "리스크 점수 산출"
	case StageScenarios:
		return "시나리오 시뮬레이션"
	case StageSupplyDemand:
		return "자금 수급 분석"
	case StageHealth:
		return "자금조달 건전성"
	case StageWarnings:
		return "조기경보"
	default:
		return "알 수 없음"
	}
}

// Artifact returns the artifact kind the stage produces
func (s Stage) Artifact() ArtifactKind {
	switch s {
	case StageIndicators:
		return ArtifactDataset
	case StageRisk:
		return ArtifactRiskAssessment
	case StageScenarios:
		return ArtifactScenarios
	case StageSupplyDemand:
		return ArtifactSupplyDemand
	case StageHealth:
		return ArtifactHealthReport
	case StageWarnings:
		return ArtifactWarningDashboard
	default:
		return ""
	}
}

// Index returns the stage position (0..5) or -1 when unknown
func (s Stage) Index() int {
	for i, stage := range AllStages() {
		if stage == s {
			return i
		}
	}
	return -1
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageIndicators,
		StageRisk,
		StageScenarios,
		StageSupplyDemand,
		StageHealth,
		StageWarnings,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	return Stage(s).Index() >= 0
}

// ParseStage accepts a full name ("S2_SCENARIOS") or short name ("S2"), case-insensitive
func ParseStage(s string) (Stage, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, stage := range AllStages() {
		if upper == string(stage) || upper == stage.ShortName() {
			return stage, nil
		}
	}
	return "", &InvalidParameterError{Param: "stage", Value: s, Reason: "unknown stage"}
}

// =============================================================================
// Artifacts & run manifest
// =============================================================================

// ArtifactKind names a persisted stage output
type ArtifactKind string

const (
	ArtifactDataset          ArtifactKind = "dataset"
	ArtifactRiskAssessment   ArtifactKind = "risk_assessment"
	ArtifactScenarios        ArtifactKind = "scenarios"
	ArtifactSupplyDemand     ArtifactKind = "supply_demand"
	ArtifactHealthReport     ArtifactKind = "health_report"
	ArtifactWarningDashboard ArtifactKind = "warning_dashboard"
	ArtifactManifest         ArtifactKind = "manifest"
)

// AllArtifactKinds returns every kind a complete run persists
func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{
		ArtifactDataset,
		ArtifactRiskAssessment,
		ArtifactScenarios,
		ArtifactSupplyDemand,
		ArtifactHealthReport,
		ArtifactWarningDashboard,
		ArtifactManifest,
	}
}

// ParseArtifactKind validates a kind name
func ParseArtifactKind(s string) (ArtifactKind, error) {
	for _, k := range AllArtifactKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &InvalidParameterError{Param: "kind", Value: s, Reason: "unknown artifact kind"}
}

// StageResult represents the result of a pipeline stage execution
type StageResult struct {
	Stage    Stage                  `json:"stage"`
	Success  bool                   `json:"success"`
	Reused   bool                   `json:"reused"`
	Duration int64                  `json:"duration_ms"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RunManifest records how a run was produced
type RunManifest struct {
	RunID       string        `json:"run_id"`
	AsOf        string        `json:"as_of"`
	ConfigHash  string        `json:"config_hash"`
	FromStage   Stage         `json:"from_stage"`
	ReusedRunID string        `json:"reused_run_id,omitempty"`
	StartedAt   int64         `json:"started_at"`
	FinishedAt  int64         `json:"finished_at"`
	Stages      []StageResult `json:"stages"`
	Status      Severity      `json:"status"`
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "파이프라인 실행 (S0 → S5)",
	Long: `지표 파일을 읽어 전체 파이프라인을 실행하고 아티팩트를 저장합니다.

--from 으로 중간 단계부터 재실행하면 이전 실행(--reuse)의 상위 아티팩트를 재사용합니다.

Examples:
  go run ./cmd/capexwatch run
  go run ./cmd/capexwatch run --dataset data/indicators.sample.json --json
  go run ./cmd/capexwatch run --from S4 --reuse latest`,
	RunE: runPipeline,
}

var (
	runFrom  string
	runReuse string
	runID    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFrom, "from", "S0", "first stage to compute (S0..S5)")
	runCmd.Flags().StringVar(&runReuse, "reuse", brain.LatestRun, "run whose upstream artifacts are reused with --from")
	runCmd.Flags().StringVar(&runID, "run-id", "", "explicit run ID (default: generated)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	from, err := contracts.ParseStage(runFrom)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	a, err := bootstrap(ctx, bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.orchestrator.Run(ctx, brain.RunConfig{
		RunID:      runID,
		FromStage:  from,
		ReuseRunID: runReuse,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if jsonOutput {
		return PrintJSON(map[string]interface{}{
			"run_id":    result.RunID,
			"manifest":  result.Manifest,
			"risk":      result.Assessment,
			"health":    result.Health,
			"dashboard": result.Dashboard,
		})
	}

	printRunSummary(result)
	PrintDashboard(result.RunID, result.Dashboard)
	return nil
}

func printRunSummary(result *brain.RunResult) {
	PrintHeader("Pipeline Run")
	PrintKeyValue("Run ID", result.RunID, 14)
	PrintKeyValue("Duration", result.Duration.Round(time.Millisecond).String(), 14)
	PrintKeyValue("Config hash", result.Manifest.ConfigHash[:12], 14)
	if result.Manifest.ReusedRunID != "" {
		PrintKeyValue("Reused run", result.Manifest.ReusedRunID, 14)
	}
	fmt.Println()

	for _, sr := range result.Manifest.Stages {
		state := fmt.Sprintf("%dms", sr.Duration)
		if sr.Reused {
			state = "reused"
		}
		PrintKeyValue(sr.Stage.ShortName(), fmt.Sprintf("%-18s %s", sr.Stage.Description(), state), 4)
	}

	a := result.Assessment
	fmt.Println()
	PrintKeyValue("Risk score", fmt.Sprintf("%.2f (%s)", a.OverallScore, a.RiskLevel), 14)
	PrintKeyValue("Completeness", fmt.Sprintf("%.1f%% (%d estimated)", a.DataCompleteness, a.EstimatedCount), 14)
	PrintKeyValue("Macro", a.Macro.Environment, 14)
	if len(a.KeyFindings) > 0 {
		fmt.Println("\n   Key findings:")
		PrintList(a.KeyFindings)
	}

	p := result.Projection
	fmt.Println()
	PrintKeyValue("Supply/demand", fmt.Sprintf("%.2fx %s (%s)", p.BalanceRatio.Value, p.Trend, p.Scenario), 14)
	PrintKeyValue("Alert level", SeverityIcon(result.Health.AlertLevel), 14)
}

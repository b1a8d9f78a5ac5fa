package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
)

// warnCmd represents the warn command
var warnCmd = &cobra.Command{
	Use:   "warn",
	Short: "조기경보 대시보드 조회",
	Long: `저장된 실행의 조기경보 대시보드를 출력합니다.

--fresh 는 저장소를 건드리지 않고 현재 지표로 즉시 계산합니다.

Examples:
  go run ./cmd/capexwatch warn
  go run ./cmd/capexwatch warn --run run_20250101_070000_ab12cd34
  go run ./cmd/capexwatch warn --fresh --json`,
	RunE: runWarn,
}

var (
	warnRun   string
	warnFresh bool
)

func init() {
	rootCmd.AddCommand(warnCmd)

	warnCmd.Flags().StringVar(&warnRun, "run", brain.LatestRun, "run ID to display")
	warnCmd.Flags().BoolVar(&warnFresh, "fresh", false, "compute from current indicators without persisting")
}

func runWarn(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a, err := bootstrap(ctx, bootstrapOptions{inMemory: warnFresh})
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		runID     string
		dashboard *contracts.WarningDashboard
	)
	if warnFresh {
		result, err := a.orchestrator.Run(ctx, brain.RunConfig{})
		if err != nil {
			return err
		}
		runID, dashboard = result.RunID, result.Dashboard
	} else {
		id, payload, err := a.orchestrator.LoadRaw(ctx, warnRun, contracts.ArtifactWarningDashboard)
		if err != nil {
			PrintError("No stored dashboard; run `capexwatch run` first or use --fresh")
			return err
		}
		if jsonOutput {
			_, err := cmd.OutOrStdout().Write(payload)
			return err
		}
		dashboard = &contracts.WarningDashboard{}
		if err := json.Unmarshal(payload, dashboard); err != nil {
			return fmt.Errorf("decode dashboard %s: %w", id, err)
		}
		runID = id
	}

	if jsonOutput {
		return PrintJSON(dashboard)
	}
	PrintDashboard(runID, dashboard)
	return nil
}

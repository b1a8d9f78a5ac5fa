package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/capexwatch/internal/brain"
	"github.com/wonny/capexwatch/internal/contracts"
	"github.com/wonny/capexwatch/internal/modelconfig"
	"github.com/wonny/capexwatch/internal/scenario"
)

// scenarioCmd represents the scenario command
var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "시나리오 시뮬레이션 (저장 없음)",
	Long: `현재 지표를 기준으로 프리셋 또는 사용자 정의 시나리오를 시뮬레이션합니다.
결과는 저장되지 않습니다.

Examples:
  go run ./cmd/capexwatch scenario                       # all presets
  go run ./cmd/capexwatch scenario --preset ai_winter
  go run ./cmd/capexwatch scenario --capex-growth 0.5 --revenue-growth 0.03 --years 5
  go run ./cmd/capexwatch scenario list`,
	RunE: runScenario,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "설정된 프리셋 목록",
	RunE:  runScenarioList,
}

var (
	scenarioPresets []string
	scenarioName    string
	customParams    contracts.ScenarioParameters
)

func init() {
	rootCmd.AddCommand(scenarioCmd)
	scenarioCmd.AddCommand(scenarioListCmd)

	f := scenarioCmd.Flags()
	f.StringSliceVar(&scenarioPresets, "preset", nil, "preset name(s) to simulate")
	f.StringVar(&scenarioName, "name", "", "name of the custom scenario")
	f.Float64Var(&customParams.CapexGrowthRate, "capex-growth", 0.25, "custom: annual capex growth (decimal)")
	f.Float64Var(&customParams.RevenueGrowthRate, "revenue-growth", 0.10, "custom: annual revenue growth (decimal)")
	f.Float64Var(&customParams.DebtGrowthRate, "debt-growth", 0.10, "custom: annual debt growth (decimal)")
	f.Float64Var(&customParams.InterestRate, "interest", 0.05, "custom: interest rate (decimal)")
	f.IntVar(&customParams.YearsToSimulate, "years", 5, "custom: years to simulate")
}

// customRequested reports whether any custom parameter flag was set
func customRequested(cmd *cobra.Command) bool {
	for _, name := range []string{"capex-growth", "revenue-growth", "debt-growth", "interest", "years", "name"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	a, err := bootstrap(ctx, bootstrapOptions{inMemory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	var scenarios []scenario.Scenario
	switch {
	case customRequested(cmd):
		scenarios = append(scenarios, scenario.Custom(scenarioName, customParams))
	case len(scenarioPresets) > 0:
		for _, name := range scenarioPresets {
			sc, err := scenario.FromPreset(a.model, name)
			if err != nil {
				return err
			}
			scenarios = append(scenarios, sc)
		}
	default:
		scenarios = scenario.Presets(a.model)
	}

	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios configured")
	}

	sims := make([]*brain.Simulation, 0, len(scenarios))
	for _, sc := range scenarios {
		sim, err := a.orchestrator.Simulate(ctx, sc)
		if err != nil {
			PrintError(err.Error())
			return err
		}
		sims = append(sims, sim)
	}

	if jsonOutput {
		return PrintJSON(sims)
	}

	b := sims[0].Baseline
	PrintHeader("Aggregate Baseline")
	PrintKeyValue("Companies", fmt.Sprintf("%d", b.CompanyCount), 14)
	PrintKeyValue("Capex", fmt.Sprintf("%.1f", b.Capex), 14)
	PrintKeyValue("Revenue", fmt.Sprintf("%.1f", b.Revenue), 14)
	PrintKeyValue("Debt", fmt.Sprintf("%.1f", b.Debt), 14)
	PrintKeyValue("Capex/OCF", fmt.Sprintf("%.2f", b.CapexToCashFlow()), 14)

	for _, sim := range sims {
		PrintProjection(sim.Scenario)
		p := sim.Projection
		ratio := string(p.BalanceRatio.State)
		if p.BalanceRatio.IsDefined() {
			ratio = fmt.Sprintf("%.2fx", p.BalanceRatio.Value)
		}
		PrintKeyValue("Supply/demand", fmt.Sprintf("%s, sustainability %.1f, %s", ratio, p.SustainabilityScore, p.Trend), 14)
	}
	PrintDoubleSeparator()
	return nil
}

func runScenarioList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, err := modelconfig.LoadOrDefault(cfg.ModelConfigPath)
	if err != nil {
		return fmt.Errorf("load model config: %w", err)
	}

	presets := scenario.Presets(model)
	if jsonOutput {
		return PrintJSON(presets)
	}

	widths := []int{18, 8, 8, 8, 9, 6}
	PrintHeader("Scenario Presets")
	PrintTableHeader([]string{"Preset", "Capex", "Revenue", "Debt", "Interest", "Years"}, widths)
	for _, p := range presets {
		PrintTableRow([]string{
			p.Name,
			fmt.Sprintf("%.0f%%", p.Params.CapexGrowthRate*100),
			fmt.Sprintf("%.0f%%", p.Params.RevenueGrowthRate*100),
			fmt.Sprintf("%.0f%%", p.Params.DebtGrowthRate*100),
			fmt.Sprintf("%.2f%%", p.Params.InterestRate*100),
			fmt.Sprintf("%d", p.Params.YearsToSimulate),
		}, widths)
	}
	return nil
}

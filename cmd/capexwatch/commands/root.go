package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	modelConfigPath string
	datasetPath     string
	jsonOutput      bool
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "capexwatch",
	Short: "AI 인프라 CAPEX 자금조달 리스크 모델",
	Long: `capexwatch - AI infrastructure capex funding risk model

6단계 파이프라인으로 지표 로드부터 조기경보까지:
  S0 Indicators → S1 Risk → S2 Scenarios → S3 Supply/Demand → S4 Health → S5 Warnings

Usage:
  go run ./cmd/capexwatch [command]

Examples:
  go run ./cmd/capexwatch run
  go run ./cmd/capexwatch run --from S4 --reuse latest
  go run ./cmd/capexwatch scenario --preset ai_winter
  go run ./cmd/capexwatch warn
  go run ./cmd/capexwatch config validate configs/model.yaml
  go run ./cmd/capexwatch serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&modelConfigPath, "model-config", "", "model YAML (default: MODEL_CONFIG_PATH or built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "indicator JSON (default: DATASET_PATH)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print artifacts as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/capexwatch/internal/modelconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "모델 설정 검증/출력",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "모델 YAML 검증",
	Long: `모델 YAML을 기본값 위에 디코딩하고 검증합니다.
알 수 없는 필드, 가중치 합, 임계값 순서를 검사하고 권장 사항 위반을 경고로 출력합니다.

Examples:
  go run ./cmd/capexwatch config validate configs/model.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "적용되는 모델 설정과 해시 출력",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}

// modelPath resolves the positional path, then --model-config, then MODEL_CONFIG_PATH
func modelPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.ModelConfigPath, nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path, err := modelPath(args)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("no model config path: pass one or set MODEL_CONFIG_PATH")
	}

	cfg, _, err := modelconfig.Load(path)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	hash, err := modelconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintHeader("Model Config")
	PrintKeyValue("Path", path, 10)
	PrintKeyValue("Model", cfg.Meta.ModelID, 10)
	PrintKeyValue("Version", cfg.Meta.Version, 10)
	PrintKeyValue("Hash", hash, 10)
	fmt.Println()

	warnings := modelconfig.Warn(cfg)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	if len(warnings) == 0 {
		PrintSuccess("Config is valid")
	} else {
		PrintSuccess(fmt.Sprintf("Config is valid (%d warnings)", len(warnings)))
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := modelPath(nil)
	if err != nil {
		return err
	}
	cfg, err := modelconfig.LoadOrDefault(path)
	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(cfg)
	}

	out, err := modelconfig.YAML(cfg)
	if err != nil {
		return err
	}
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Printf("# source: %s\n# hash: %s\n", source, modelconfig.MustHash(cfg))
	fmt.Print(string(out))
	return nil
}

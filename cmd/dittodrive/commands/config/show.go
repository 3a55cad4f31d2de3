package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective DittoDrive configuration: the file, environment
overrides and defaults combined.

By default outputs YAML format. Use --output json for JSON.

Examples:
  dittodrive config show
  dittodrive config show --output json`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "json":
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}

package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/pkg/config"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the DittoDrive configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  dittodrive config validate

  # Validate specific config file
  dittodrive config validate --config /etc/dittodrive/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Store.Type == store.TypeMemory {
		warnings = append(warnings, "memory store: the drive is lost when the process exits")
	}
	if cfg.Store.Type == store.TypeS3 && cfg.Store.S3.SecretAccessKey != "" {
		warnings = append(warnings, "S3 secret stored in the config file; prefer the AWS credential chain")
	}
	if cfg.Metrics.Port != 0 && !cfg.Metrics.Enabled {
		warnings = append(warnings, "metrics.port is set but metrics are disabled")
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(w, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range warnings {
			_, _ = fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	_, _ = fmt.Fprintf(w, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(w, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(w, "  Store type:      %s\n", cfg.Store.Type)
	_, _ = fmt.Fprintf(w, "  Root user:       %s\n", cfg.Drive.RootUser)
	_, _ = fmt.Fprintf(w, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}

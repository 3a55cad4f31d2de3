package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/pkg/accounts"
	"github.com/marmos91/dittodrive/pkg/config"
)

var (
	initForce      bool
	initConfigOnly bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration, the root account and the drive",
	Long: `Initialize DittoDrive.

Writes a sample configuration file, then creates the accounts database,
the root account and an empty drive owned by it. The root password is
printed once; set $` + accounts.EnvRootInitialPassword + ` to choose it.

By default, the configuration file is created at $XDG_CONFIG_HOME/dittodrive/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  dittodrive init

  # Initialize with custom path
  dittodrive init --config /etc/dittodrive/config.yaml

  # Force overwrite existing config
  dittodrive init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVar(&initConfigOnly, "config-only", false, "Only write the configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	fmt.Printf("Configuration file created at: %s\n", configPath)

	if initConfigOnly {
		return nil
	}

	err = withRuntime(cmd, func(ctx context.Context, rt *config.Runtime) error {
		stats, err := rt.Service.Stats(ctx, rt.Config.Drive.RootUser)
		if err != nil {
			return err
		}
		fmt.Printf("Drive %s ready (%d entries, store: %s)\n", stats.FileSystemID, stats.Entries, rt.Config.Store.Type)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add users:       dittodrive user add alice")
	fmt.Println("  2. Create entries:  dittodrive mkdir /docs --user alice")
	fmt.Println("  3. Or explore:      dittodrive shell --user alice")
	return nil
}

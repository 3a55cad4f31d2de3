// Package commands implements the dittodrive command line.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/cmd/dittodrive/commands/config"
)

// EnvUser names the acting user when --user is not given.
const EnvUser = "DITTODRIVE_USER"

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile      string
	outputFormat string
	noColor      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dittodrive",
	Short: "DittoDrive - a virtual drive with owner/other permissions",
	Long: `DittoDrive is a virtual hierarchical file store. Directories, plain
files, apps and links carry owner/other permissions (read, write,
execute, delete) that are enforced for every request, and the tree is
persisted to a memory, Badger or S3 snapshot store.

Every file command acts on behalf of the user given with --user
(or $DITTODRIVE_USER), defaulting to the configured root user. The
user's password is read from $DITTODRIVE_PASSWORD or prompted for.

Use "dittodrive [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dittodrive/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(config.Cmd)
	addFileCommands(rootCmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// actingUser returns the --user flag of cmd, then $DITTODRIVE_USER, then
// fallback.
func actingUser(cmd *cobra.Command, fallback string) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	if u := os.Getenv(EnvUser); u != "" {
		return u
	}
	return fallback
}

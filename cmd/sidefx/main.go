package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sidefx/internal/config"
	"sidefx/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded configuration, available to all subcommands.
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sidefx",
	Short: "sidefx - side-effect orchestration for agent sessions",
	Long: `sidefx safely orchestrates the external side effects of an automated
work session: user-configured lifecycle hooks, multi-provider web research
with fallback and timeout racing, and a bounded in-memory session ledger.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sidefx.yaml"
	}
	return filepath.Join(home, ".config", "sidefx", "config.yaml")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file")

	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(hooksCmd)
	rootCmd.AddCommand(turnCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

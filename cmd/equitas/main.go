package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
)

var (
	// Command-line flags
	configFiles []string // Multiple --config flags supported
	serverPort  int
	serverHost  string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "equitas",
	Short: "Equity research report generator",
	Long: `Equitas generates equity research reports from static company fundamentals,
a live market quote and a large language model. Reports are generated in the
background and stored for later retrieval over the HTTP API.`,
	PersistentPreRunE: initialize,
	RunE:              runServe,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be repeated, later files override earlier ones)")
	rootCmd.PersistentFlags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverHost, "host", "", "Server host (overrides config)")

	rootCmd.AddCommand(serveCmd, promptCmd, generateCmd, versionCmd)
}

func main() {
	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize runs the startup sequence shared by every command.
//
// Startup sequence (REQUIRED ORDER):
//  1. Load config (defaults -> file1 -> file2 -> ... -> env)
//  2. Apply CLI overrides (highest priority)
//  3. Initialize logger
func initialize(cmd *cobra.Command, args []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("equitas.toml"); err == nil {
			configFiles = append(configFiles, "equitas.toml")
		} else if _, err := os.Stat("deployments/local/equitas.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/equitas.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration %v: %w", configFiles, err)
	}

	common.ApplyFlagOverrides(config, serverPort, serverHost)

	logger = common.SetupLogger(config)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("llm_provider", string(config.LLM.Provider)).
		Str("data_dir", config.Data.Dir).
		Msg("Resolved configuration")

	return nil
}

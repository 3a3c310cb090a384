package main

import (
	"github.com/hearthlink/tether"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	cfgDBPath    string
	cfgHearthURL string
	cfgAPIKey    string
	cfgDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "Tether - offline-first patient device agent",
	Long: `Tether keeps a patient device functioning while disconnected and
reconciles everything with the Hearth caregiver backend once
connectivity returns.

It manages the pending-operation queues, the reconciliation passes,
the liveness heartbeat, and the background location task.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file (default: ~/.tether/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to local database (default: ~/.tether/tether.db)")
	rootCmd.PersistentFlags().StringVar(&cfgHearthURL, "hearth-url", "", "URL of the Hearth backend")
	rootCmd.PersistentFlags().StringVar(&cfgAPIKey, "api-key", "", "API key for Hearth authentication")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers config sources: defaults, then the YAML file, then
// environment variables, then flags.
func loadConfig() (tether.Config, error) {
	cfg := tether.DefaultConfig()

	fileCfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return cfg, err
	}
	if fileCfg != nil {
		fileCfg.apply(&cfg)
	}

	env := tether.ConfigFromEnv()
	if env.LocalPath != "" {
		cfg.LocalPath = env.LocalPath
	}
	if env.HearthURL != "" {
		cfg.HearthURL = env.HearthURL
	}
	if env.APIKey != "" {
		cfg.APIKey = env.APIKey
	}
	if env.Debug {
		cfg.Debug = true
	}
	if env.DebugLogPath != "" {
		cfg.DebugLogPath = env.DebugLogPath
	}

	if cfgDBPath != "" {
		cfg.LocalPath = cfgDBPath
	}
	if cfgHearthURL != "" {
		cfg.HearthURL = cfgHearthURL
	}
	if cfgAPIKey != "" {
		cfg.APIKey = cfgAPIKey
	}
	if cfgDebug {
		cfg.Debug = true
	}

	return cfg, nil
}

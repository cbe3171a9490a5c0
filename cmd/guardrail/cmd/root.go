package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"guardrail/internal/config"
)

var (
	cfgPath string
	envOnly bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "guardrail",
	Short: "Trade plan guardrails and the global trading pause",
	Long: `Guardrail decides whether a proposed trade plan may proceed and owns the
global trading pause (lockdown) governor.

Commands:
  serve      - Run the HTTP API and background jobs
  status     - Show the current governor state
  pause      - Pause trading (lockdown)
  resume     - Resume trading
  history    - Show the governor log
  evaluate   - Evaluate a plan file against the guardrails
  decisions  - List recorded decisions
  config     - Generate or validate configuration files

Every setting can come from the config file or from GR_* environment
variables, e.g. GR_DB_DSN or GR_RISK_MAX_LEVERAGE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultPath := os.Getenv("GR_CONFIG")
	if defaultPath == "" {
		defaultPath = "config/config.yaml"
	}
	defaultEnvOnly := false
	if raw := os.Getenv("GR_ENV_ONLY"); raw != "" {
		defaultEnvOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&envOnly, "env-only", defaultEnvOnly, "ignore the config file and read only GR_* environment variables")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgPath, envOnly)
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath     string
	jsonOutput     bool
	logLevelFlag   string
	sourceOverride string
)

var rootCmd = &cobra.Command{
	Use:   "reelcat",
	Short: "Terminal client for the online cinema catalog",
	Long: `reelcat - terminal client for the online cinema catalog

Browse, search and play movies from the cinema backend, or from the
static dataset when no backend is available.

Run 'reelcat init' to write a starter configuration.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&sourceOverride, "source", "", "Override movie source (backend, dataset)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("reelcat {{.Version}}\n")
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config syntax, value ranges, and environment variable substitution without contacting any server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	if len(cfg.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range cfg.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	switch cfg.Source {
	case config.SourceDataset:
		fmt.Fprintf(w, "  Source:     dataset %s (%s)\n", cfg.Dataset.BaseURL, cfg.Dataset.Language)
	default:
		fmt.Fprintf(w, "  Source:     backend %s (timeout %s, retries %d)\n", cfg.API.BaseURL, cfg.API.Timeout, cfg.API.Retries)
	}
	fmt.Fprintf(w, "  State:      %s\n", cfg.State.Path)
	fmt.Fprintf(w, "  Posters:    ttl %s, preload excluded origins: %t\n", cfg.Poster.TTL, cfg.Poster.Preload)
	if len(cfg.Poster.ExcludedOrigins) > 0 {
		fmt.Fprintf(w, "  Excluded:   %s\n", strings.Join(cfg.Poster.ExcludedOrigins, ", "))
	}
	fmt.Fprintf(w, "  Search:     debounce %s, cache %s, limit %d\n", cfg.Search.Debounce, cfg.Search.CacheTTL, cfg.Search.Limit)
	fmt.Fprintf(w, "  Normalize:  list=%s detail=%s\n", cfg.Normalize.List, cfg.Normalize.Detail)
	logTarget := "stderr"
	if cfg.Log.File != "" {
		logTarget = cfg.Log.File
	}
	fmt.Fprintf(w, "  Log:        %s (%s)\n", cfg.Log.Level, logTarget)
}

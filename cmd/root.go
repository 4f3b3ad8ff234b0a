package main

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/config"
)

var cfg *config.Config

// exportZone is the report time zone resolved once per invocation.
var exportZone *time.Location

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "smartgwiza",
	Short: "SmartGwiza yield data exports and analytics",
	Long:  "Pulls farmer submissions from the SmartGwiza backend, normalizes them and produces CSV/XLSX reports, district rollups and before/after yield comparisons.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			c.Log.Level = "debug"
		}

		// A bad zone would otherwise only surface after the backend fetch.
		loc, err := c.Export.Location()
		if err != nil {
			return fmt.Errorf("export timezone: %w", err)
		}
		cfg, exportZone = c, loc

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.CommandPath()),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("store", cfg.Store.Driver),
			zap.String("timezone", loc.String()),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

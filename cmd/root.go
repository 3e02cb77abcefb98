package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eagle-eye",
	Short: "L2 port utilization to door-knocking plan",
	Long:  "Ingests the weekly L2 ports utilization dump, scores and aggregates splitters into Happy Blocks and Sales Zones, enriches top blocks with POI and visit-timing data, and exports prioritized sales reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

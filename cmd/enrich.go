package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/eagle-eye-cli/internal/enrich"
	"github.com/sells-group/eagle-eye-cli/internal/poi"
	"github.com/sells-group/eagle-eye-cli/internal/resilience"
	"github.com/sells-group/eagle-eye-cli/internal/store"
	"github.com/sells-group/eagle-eye-cli/internal/timing"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich top blocks with POI and visit timing",
	Long: `Looks up an indicator POI (community store) for each of the top Happy
Blocks and derives recommended door-knocking hours from its foot traffic.
Results land in the store's TTL caches, so re-running only refreshes
expired entries.`,
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.Int("top", 0, "number of top blocks to enrich (default from config)")
	f.String("province", "", "filter by province")
	f.String("district", "", "filter by district")
	f.Bool("refresh-timing", false, "re-read cached live timing patterns from the stored week forecast")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("enrich"); err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	if top == 0 {
		top = cfg.Enrich.TopBlocks
	}
	province, _ := cmd.Flags().GetString("province")
	district, _ := cmd.Flags().GetString("district")
	refreshTiming, _ := cmd.Flags().GetBool("refresh-timing")

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	blocks, err := st.ListBlocks(ctx, store.BlockFilter{
		Province: province,
		District: district,
		Limit:    top,
	})
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Println("No blocks to enrich. Run ingest first.")
		return nil
	}

	retry := resilience.FromRetryConfig(
		cfg.Enrich.RetryAttempts, cfg.Enrich.RetryBackoffMs, 0, 0, 0)
	retry.OnRetry = resilience.RetryLogger("enrich", "lookup")

	e := &enrich.Enricher{
		Store:       st,
		Finder:      poi.NewFinder(initPlaces()),
		Timing:      timing.NewService(initBestTime()),
		Retry:       retry,
		Concurrency: cfg.Enrich.Concurrency,
		POITTL:      time.Duration(cfg.Places.CacheTTLHours) * time.Hour,
		TimingTTL:   time.Duration(cfg.BestTime.CacheTTLHours) * time.Hour,
		RefreshLive: refreshTiming,
	}

	res, err := e.Run(ctx, blocks)
	if err != nil {
		return err
	}

	fmt.Printf("Enriched %d blocks: %d POIs fetched (%d cached, %d not found), %d timings fetched (%d cached)\n",
		res.Blocks, res.POIFetched, res.POICached, res.POINotFound,
		res.TimingFetched, res.TimingCached)
	return nil
}

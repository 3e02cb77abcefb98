package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/block"
	"github.com/sells-group/eagle-eye-cli/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the weekly L2 dump and snapshot Happy Blocks",
	Long: `Reads the L2 ports utilization dump (local CSV or ftp:// URL), cleans and
scores every splitter record, aggregates them into Happy Block grid cells,
and saves the snapshot into the store.

Examples:
  # Ingest from the configured source
  eagle-eye ingest

  # Ingest a local file and export the enhanced database CSVs
  eagle-eye ingest --source l2_ports.csv --export-dir ./out

  # Quick run over the first 500 valid rows
  eagle-eye ingest --sample 500`,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.String("source", "", "dump path or ftp:// URL (default from config)")
	f.Int("sample", 0, "stop after N valid rows (0 = all)")
	f.String("export-dir", "", "write enhanced database CSVs (blocks + L2 details) to this directory")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, _ := cmd.Flags().GetString("source")
	sample, _ := cmd.Flags().GetInt("sample")
	exportDir, _ := cmd.Flags().GetString("export-dir")

	if source == "" {
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}
	}

	log := zap.L().With(zap.String("command", "ingest"))

	loader, err := initLoader(source)
	if err != nil {
		return err
	}
	loader.SampleSize = sample

	records, stats, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	blocks := block.Aggregate(records)
	zones := block.BuildZones(blocks)
	summary := block.Summarize(records, blocks)

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	saved, err := st.SaveBlocks(ctx, blocks)
	if err != nil {
		return err
	}

	log.Info("snapshot complete",
		zap.Int("rows_total", stats.TotalRows),
		zap.Int("rows_valid", stats.ValidRows),
		zap.Int("rows_skipped", stats.SkippedRows),
		zap.Int("happy_blocks", len(blocks)),
		zap.Int("sales_zones", len(zones)),
		zap.Int("blocks_saved", saved),
		zap.Int("total_available_ports", summary.TotalAvailablePorts),
	)

	if exportDir != "" {
		if err := exportDatabase(exportDir, blocks, records); err != nil {
			return err
		}
		log.Info("enhanced database exported", zap.String("dir", exportDir))
	}

	fmt.Printf("Ingested %d L2 records into %d Happy Blocks (%d Sales Zones)\n",
		stats.ValidRows, len(blocks), len(zones))
	return nil
}

// exportDatabase writes the aggregated-blocks and per-L2-details CSVs.
func exportDatabase(dir string, blocks []model.HappyBlock, records []model.L2Port) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "ingest: create export dir")
	}

	blockRows := [][]string{{
		"Happy_Block", "Village", "L2_Count", "Avail_Ports", "Block_Avail_Ports",
		"Priority_Score", "Priority_Label", "Avg_Aging_Days", "Installation_Status",
		"Latitude", "Longitude", "Province", "District", "Subdistrict", "Location_Type",
	}}
	for _, b := range blocks {
		blockRows = append(blockRows, []string{
			b.ID, b.Village,
			fmt.Sprintf("%d", b.L2Count),
			fmt.Sprintf("%d", b.AvailPorts),
			fmt.Sprintf("%d", b.BlockAvailPorts),
			fmt.Sprintf("%.1f", b.PriorityScore),
			string(b.PriorityLabel),
			fmt.Sprintf("%.1f", b.AvgAgingDays),
			string(b.InstallStatus),
			fmt.Sprintf("%.6f", b.Latitude),
			fmt.Sprintf("%.6f", b.Longitude),
			b.Province, b.District, b.Subdistrict, b.LocationType,
		})
	}
	if err := writeCSVFile(filepath.Join(dir, "happy_blocks.csv"), blockRows); err != nil {
		return err
	}

	l2Rows := [][]string{{
		"L2_Name", "Happy_Block", "Village", "Total_Ports", "Used_Ports", "Avail_Ports",
		"Utilization_Pct", "Aging_Days", "Priority_Score", "Priority_Label",
		"Installation_Status", "Latitude", "Longitude",
	}}
	for _, l2 := range records {
		l2Rows = append(l2Rows, []string{
			l2.Name, l2.HappyBlock, l2.Village,
			fmt.Sprintf("%d", l2.TotalPorts),
			fmt.Sprintf("%d", l2.UsedPorts),
			fmt.Sprintf("%d", l2.AvailPorts),
			fmt.Sprintf("%.1f", l2.UtilizationPct),
			fmt.Sprintf("%.0f", l2.AgingDays),
			fmt.Sprintf("%.1f", l2.PriorityScore),
			string(l2.PriorityLabel),
			string(l2.InstallStatus),
			fmt.Sprintf("%.6f", l2.Latitude),
			fmt.Sprintf("%.6f", l2.Longitude),
		})
	}
	return writeCSVFile(filepath.Join(dir, "l2_details.csv"), l2Rows)
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "ingest: create export file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrap(err, "ingest: write export rows")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/block"
	"github.com/sells-group/eagle-eye-cli/internal/enrich"
	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/report"
	"github.com/sells-group/eagle-eye-cli/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate and publish sales reports",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the two-level sales report",
	Long: `Re-reads the utilization dump, aggregates fresh Happy Blocks, joins the
cached POI/timing enrichment, and writes the OVERVIEW/DETAIL report.

Examples:
  # Top 20 blocks across the whole dump, xlsx
  eagle-eye report generate

  # District report as CSV with a Claude briefing
  eagle-eye report generate --district "Hat Yai" --format csv --briefing

  # Publish to Notion and push leads to Salesforce
  eagle-eye report generate --notion --salesforce`,
	RunE: runReportGenerate,
}

func init() {
	f := reportGenerateCmd.Flags()
	f.String("source", "", "dump path or ftp:// URL (default from config)")
	f.Int("top", 20, "number of top blocks to include (0 = all)")
	f.String("province", "", "filter by province")
	f.String("district", "", "filter by district")
	f.String("village", "", "filter by village name")
	f.String("output", "", "output file path (default: <output_dir>/eagle_eye_report_<timestamp>)")
	f.String("format", "", "output format: xlsx or csv (default from config)")
	f.Bool("briefing", false, "print a Claude-generated sales briefing")
	f.Bool("notion", false, "publish OVERVIEW rows to the Notion block database")
	f.Bool("salesforce", false, "push OVERVIEW rows to Salesforce as leads")

	reportCmd.AddCommand(reportGenerateCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Report.Format
	}
	cfg.Report.Format = format
	if err := cfg.Validate("report"); err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	top, _ := cmd.Flags().GetInt("top")
	province, _ := cmd.Flags().GetString("province")
	district, _ := cmd.Flags().GetString("district")
	village, _ := cmd.Flags().GetString("village")
	output, _ := cmd.Flags().GetString("output")
	withBriefing, _ := cmd.Flags().GetBool("briefing")
	toNotion, _ := cmd.Flags().GetBool("notion")
	toSalesforce, _ := cmd.Flags().GetBool("salesforce")

	log := zap.L().With(zap.String("command", "report"))

	loader, err := initLoader(source)
	if err != nil {
		return err
	}
	records, _, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	filter := block.Filter{Province: province, District: district}
	if village != "" {
		filter.Villages = []string{village}
	}
	blocks := block.PrioritizeBlocks(filter.Apply(block.Aggregate(records)), top)
	if len(blocks) == 0 {
		fmt.Println("No blocks match the filter.")
		return nil
	}

	l2sByBlock := make(map[string][]model.L2Port)
	for _, l2 := range records {
		l2sByBlock[l2.HappyBlock] = append(l2sByBlock[l2.HappyBlock], l2)
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(ctx, reportArea(province, district, village))
	if err != nil {
		return err
	}

	outPath, rows, err := buildAndWrite(ctx, st, blocks, l2sByBlock, format, output)
	if err != nil {
		if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			log.Warn("record run failure", zap.Error(failErr))
		}
		return err
	}
	if err := st.CompleteRun(ctx, run.ID, len(rows), outPath); err != nil {
		return err
	}

	log.Info("report written",
		zap.String("run", run.ID),
		zap.String("path", outPath),
		zap.Int("rows", len(rows)),
	)
	fmt.Printf("Report written to %s (%d rows, %d blocks)\n", outPath, len(rows), len(blocks))

	if toNotion {
		nc, err := initNotion()
		if err != nil {
			return err
		}
		res, err := report.PublishToNotion(ctx, nc, cfg.Notion.BlockDB, rows)
		if err != nil {
			return err
		}
		fmt.Printf("Notion: %d pages created, %d updated\n", res.Created, res.Updated)
	}

	if toSalesforce {
		sc, err := initSalesforce()
		if err != nil {
			return err
		}
		res, err := report.PushLeads(ctx, sc, rows)
		if err != nil {
			return err
		}
		fmt.Printf("Salesforce: %d leads inserted, %d updated\n", res.Inserted, res.Updated)
	}

	if withBriefing {
		ai, err := initAnthropic()
		if err != nil {
			return err
		}
		text, err := report.GenerateBriefing(ctx, ai, cfg.Anthropic.Model, rows, cfg.Report.BriefingTop)
		if err != nil {
			return err
		}
		fmt.Println("\n--- Sales Briefing ---")
		fmt.Println(text)
	}

	return nil
}

func buildAndWrite(ctx context.Context, st store.Store, blocks []model.HappyBlock, l2s map[string][]model.L2Port, format, output string) (string, []model.ReportRow, error) {
	pois, timings, err := enrich.Collect(ctx, st, blocks)
	if err != nil {
		return "", nil, err
	}

	rows := report.BuildRows(report.Input{
		Blocks:  blocks,
		L2s:     l2s,
		POIs:    pois,
		Timings: timings,
	})

	outPath := output
	if outPath == "" {
		name := fmt.Sprintf("eagle_eye_report_%s.%s", time.Now().Format("20060102_1504"), format)
		outPath = filepath.Join(cfg.Report.OutputDir, name)
	}

	switch format {
	case "csv":
		err = report.WriteCSV(outPath, rows)
	default:
		err = report.WriteXLSX(outPath, rows)
	}
	if err != nil {
		return "", nil, err
	}
	return outPath, rows, nil
}

// reportArea describes the report filter for the run record.
func reportArea(province, district, village string) string {
	var parts []string
	for _, p := range []string{province, district, village} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "all areas"
	}
	return strings.Join(parts, " / ")
}

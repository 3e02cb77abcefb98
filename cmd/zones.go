package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eagle-eye-cli/internal/block"
	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/store"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Inspect village Sales Zones",
}

var zonesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prioritized Sales Zones",
	Long:  "Groups the stored Happy Blocks by village and lists the resulting Sales Zones, highest priority first.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		province, _ := cmd.Flags().GetString("province")
		district, _ := cmd.Flags().GetString("district")
		top, _ := cmd.Flags().GetInt("top")
		format, _ := cmd.Flags().GetString("format")

		blocks, err := st.ListBlocks(ctx, store.BlockFilter{
			Province: province,
			District: district,
		})
		if err != nil {
			return eris.Wrap(err, "zones list")
		}
		if len(blocks) == 0 {
			fmt.Fprintln(os.Stderr, "No blocks found. Run ingest first.")
			return nil
		}

		zones := block.PrioritizeZones(block.BuildZones(blocks), top)

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(zones)
		case "table":
			formatZonesList(os.Stdout, zones)
			return nil
		default:
			return eris.Errorf("unknown format: %s", format)
		}
	},
}

func init() {
	f := zonesListCmd.Flags()
	f.String("province", "", "filter by province")
	f.String("district", "", "filter by district")
	f.Int("top", 20, "maximum zones (0 = all)")
	f.String("format", "table", "output format: table or json")

	zonesCmd.AddCommand(zonesListCmd)
	rootCmd.AddCommand(zonesCmd)
}

func formatZonesList(w io.Writer, zones []model.SalesZone) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ZONE\tVILLAGE\tBLOCKS\tSCORE\tPRIORITY\tL2S\tPORTS")
	for _, z := range zones {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%s\t%d\t%d\n",
			z.ID, z.Village, z.BlockCount, z.PriorityScore, z.PriorityLabel,
			z.L2Count, z.BlockAvailPorts)
	}
	tw.Flush() //nolint:errcheck
}

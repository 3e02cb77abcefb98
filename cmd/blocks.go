package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/spatial"
	"github.com/sells-group/eagle-eye-cli/internal/store"
	"github.com/sells-group/eagle-eye-cli/pkg/places"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Inspect the Happy Block snapshot",
}

var blocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prioritized Happy Blocks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		province, _ := cmd.Flags().GetString("province")
		district, _ := cmd.Flags().GetString("district")
		subdistrict, _ := cmd.Flags().GetString("subdistrict")
		village, _ := cmd.Flags().GetString("village")
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		blocks, err := st.ListBlocks(ctx, store.BlockFilter{
			Province:    province,
			District:    district,
			Subdistrict: subdistrict,
			Village:     village,
			MinScore:    minScore,
			Limit:       limit,
		})
		if err != nil {
			return eris.Wrap(err, "blocks list")
		}

		if len(blocks) == 0 {
			fmt.Fprintln(os.Stderr, "No blocks found. Run ingest first.")
			return nil
		}

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(blocks)
		case "table":
			formatBlocksList(os.Stdout, blocks)
			return nil
		default:
			return eris.Errorf("unknown format: %s", format)
		}
	},
}

var blocksLocateCmd = &cobra.Command{
	Use:   "locate <address>",
	Short: "Resolve an address to its Happy Block",
	Long: `Geocodes an address, snaps the coordinates to the containing Happy Block
cell, and shows the stored block when the snapshot has it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return locateBlock(ctx, os.Stdout, initPlaces(), st, args[0])
	},
}

func locateBlock(ctx context.Context, w io.Writer, pc places.Client, st store.Store, address string) error {
	loc, err := pc.Geocode(ctx, address)
	if err != nil {
		return eris.Wrap(err, "blocks locate")
	}
	if loc == nil {
		fmt.Fprintf(w, "No geocoding match for %q\n", address)
		return nil
	}

	id := spatial.BlockIDForPoint(loc.Lat, loc.Lng).String()
	fmt.Fprintf(w, "%s (%.5f, %.5f)\n", id, loc.Lat, loc.Lng)

	blocks, err := st.ListBlocks(ctx, store.BlockFilter{Limit: 100000})
	if err != nil {
		return eris.Wrap(err, "blocks locate")
	}
	for _, b := range blocks {
		if b.ID == id {
			fmt.Fprintf(w, "Village: %s, score %.1f (%s), %d ports available\n",
				b.Village, b.PriorityScore, b.PriorityLabel, b.BlockAvailPorts)
			return nil
		}
	}
	fmt.Fprintln(w, "Block is not in the snapshot.")
	return nil
}

func init() {
	f := blocksListCmd.Flags()
	f.String("province", "", "filter by province")
	f.String("district", "", "filter by district")
	f.String("subdistrict", "", "filter by subdistrict")
	f.String("village", "", "filter by village name")
	f.Float64("min-score", 0, "minimum priority score")
	f.Int("limit", 20, "maximum rows")
	f.String("format", "table", "output format: table or json")

	blocksCmd.AddCommand(blocksListCmd)
	blocksCmd.AddCommand(blocksLocateCmd)
	rootCmd.AddCommand(blocksCmd)
}

func formatBlocksList(w io.Writer, blocks []model.HappyBlock) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tVILLAGE\tSCORE\tPRIORITY\tL2S\tPORTS\tDISTRICT")
	for _, b := range blocks {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\t%d\t%d\t%s\n",
			b.ID, b.Village, b.PriorityScore, b.PriorityLabel,
			b.L2Count, b.BlockAvailPorts, b.District)
	}
	tw.Flush() //nolint:errcheck
}

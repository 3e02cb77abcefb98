package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/spatial"
	"github.com/sells-group/eagle-eye-cli/internal/store"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative-boundary maintenance",
}

var adminBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill missing admin labels from the boundary shapefile",
	Long: `Point-in-polygon lookup of each stored block's centroid against the
administrative boundary shapefile, filling in Province/District/Subdistrict
labels the dump left blank.`,
	RunE: runAdminBackfill,
}

func init() {
	adminBackfillCmd.Flags().String("shapefile", "", "boundary shapefile path (default from config)")
	adminCmd.AddCommand(adminBackfillCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminBackfill(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, _ := cmd.Flags().GetString("shapefile")
	if path == "" {
		path = cfg.Admin.ShapefilePath
	}
	if path == "" {
		return eris.New("admin: shapefile path is required (EAGLE_ADMIN_SHAPEFILE_PATH)")
	}

	regions, err := spatial.LoadRegions(path)
	if err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	blocks, err := st.ListBlocks(ctx, store.BlockFilter{Limit: 100000})
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "admin-backfill"))

	var updated []model.HappyBlock
	var unresolved int
	for _, b := range blocks {
		if b.Province != "" && b.District != "" && b.Subdistrict != "" {
			continue
		}
		area, ok := regions.Locate(b.Latitude, b.Longitude)
		if !ok {
			unresolved++
			log.Debug("centroid outside every boundary polygon", zap.String("block", b.ID))
			continue
		}
		if b.Province == "" {
			b.Province = area.Province
		}
		if b.District == "" {
			b.District = area.District
		}
		if b.Subdistrict == "" {
			b.Subdistrict = area.Subdistrict
		}
		updated = append(updated, b)
	}

	if len(updated) > 0 {
		if _, err := st.SaveBlocks(ctx, updated); err != nil {
			return err
		}
	}

	log.Info("backfill complete",
		zap.Int("scanned", len(blocks)),
		zap.Int("updated", len(updated)),
		zap.Int("unresolved", unresolved),
	)
	fmt.Printf("Backfilled %d of %d blocks (%d unresolved)\n", len(updated), len(blocks), unresolved)
	return nil
}

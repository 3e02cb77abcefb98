// Package report builds and exports the two-level sales report: one
// OVERVIEW row per Happy Block followed by a DETAIL row for each L2
// inside it, enriched with POI and visit-timing data where available.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Input carries everything the builder needs. L2s, POIs and Timings are
// keyed by Happy Block ID; missing entries simply leave the enrichment
// columns blank.
type Input struct {
	Blocks  []model.HappyBlock
	L2s     map[string][]model.L2Port
	POIs    map[string]model.POI
	Timings map[string]model.TimingPattern
}

// BuildRows produces the report rows, highest-priority block first. DETAIL
// rows always directly follow their block's OVERVIEW row.
func BuildRows(in Input) []model.ReportRow {
	blocks := make([]model.HappyBlock, len(in.Blocks))
	copy(blocks, in.Blocks)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].PriorityScore > blocks[j].PriorityScore
	})

	var rows []model.ReportRow
	for _, b := range blocks {
		rows = append(rows, overviewRow(b, in.POIs[b.ID], in.Timings[b.ID]))

		l2s := make([]model.L2Port, len(in.L2s[b.ID]))
		copy(l2s, in.L2s[b.ID])
		sort.SliceStable(l2s, func(i, j int) bool {
			return l2s[i].PriorityScore > l2s[j].PriorityScore
		})
		for _, l2 := range l2s {
			rows = append(rows, detailRow(b, l2))
		}
	}
	return rows
}

func overviewRow(b model.HappyBlock, poi model.POI, timing model.TimingPattern) model.ReportRow {
	return model.ReportRow{
		Level:           model.LevelOverview,
		HappyBlock:      b.ID,
		Village:         b.Village,
		L2Count:         b.L2Count,
		PriorityScore:   b.PriorityScore,
		PriorityLabel:   b.PriorityLabel,
		AvailPorts:      b.BlockAvailPorts,
		Province:        b.Province,
		District:        b.District,
		Subdistrict:     b.Subdistrict,
		LocationType:    b.LocationType,
		POIName:         poi.Name,
		POIAddress:      poi.Address,
		POIRemark:       poi.Remark,
		TimingWeekday:   strings.Join(timing.Weekday, ", "),
		TimingWeekend:   strings.Join(timing.Weekend, ", "),
		BestDay:         timing.BestDay,
		VisitWindow:     timing.VisitWindow,
		ActivityLevel:   timing.ActivityLevel,
		TimingStatus:    timing.Status,
		DataSource:      timing.DataSource,
		BestTimeVenueID: timing.VenueID,
		MapsURL:         b.MapsURL(),
		CoverageNotes:   fmt.Sprintf("%d L2 coverage points", b.L2Count),
		Recommendations: overviewRecommendation(b),
	}
}

func detailRow(b model.HappyBlock, l2 model.L2Port) model.ReportRow {
	return model.ReportRow{
		Level:           model.LevelDetail,
		HappyBlock:      b.ID,
		Village:         l2.Village,
		L2Name:          l2.Name,
		PriorityScore:   l2.PriorityScore,
		PriorityLabel:   l2.PriorityLabel,
		AvailPorts:      l2.AvailPorts,
		InstallStatus:   l2.InstallStatus,
		MapsURL:         mapsURL(l2.Latitude, l2.Longitude),
		CoverageNotes:   fmt.Sprintf("L2 utilization: %.1f%%, %.0f days old", l2.UtilizationPct, l2.AgingDays),
		Recommendations: detailRecommendation(l2),
	}
}

// overviewRecommendation summarizes the sales angle for a whole block.
func overviewRecommendation(b model.HappyBlock) string {
	switch {
	case b.PriorityLabel == model.PriorityVeryHigh:
		return fmt.Sprintf("URGENT - %.1f priority, %s installation", b.PriorityScore, b.InstallStatus)
	case b.PriorityLabel == model.PriorityHigh:
		return fmt.Sprintf("High priority area - %d L2s, %d ports available", b.L2Count, b.BlockAvailPorts)
	case b.L2Count > 3:
		return fmt.Sprintf("Multi-L2 coverage area - %d L2s, %s installation", b.L2Count, b.InstallStatus)
	default:
		return fmt.Sprintf("Standard coverage - %d L2s, %s installation", b.L2Count, b.InstallStatus)
	}
}

// detailRecommendation summarizes the sales angle for a single L2.
func detailRecommendation(l2 model.L2Port) string {
	switch {
	case l2.AgingDays <= 180:
		return fmt.Sprintf("L2-specific: %d ports available, %s installation - URGENT", l2.AvailPorts, l2.InstallStatus)
	case l2.AvailPorts >= 5:
		return fmt.Sprintf("L2-specific: %d ports available, high capacity", l2.AvailPorts)
	default:
		return fmt.Sprintf("L2-specific: %d/%d ports available, %s installation", l2.AvailPorts, l2.TotalPorts, l2.InstallStatus)
	}
}

func mapsURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", lat, lng)
}

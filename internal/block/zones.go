package block

import (
	"fmt"
	"sort"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// BuildZones groups Happy Blocks into one sales zone per village. A village
// spanning several blocks gets a combined zone so crews work it as a unit;
// single-block villages become one-block zones. Zones come back sorted by
// score descending.
func BuildZones(blocks []model.HappyBlock) []model.SalesZone {
	byVillage := make(map[string][]model.HappyBlock)
	order := make([]string, 0)
	for _, b := range blocks {
		if _, ok := byVillage[b.Village]; !ok {
			order = append(order, b.Village)
		}
		byVillage[b.Village] = append(byVillage[b.Village], b)
	}
	sort.Strings(order)

	zones := make([]model.SalesZone, 0, len(order))
	for _, village := range order {
		zones = append(zones, buildZone(village, byVillage[village]))
	}

	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].PriorityScore > zones[j].PriorityScore
	})
	return zones
}

func buildZone(village string, blocks []model.HappyBlock) model.SalesZone {
	first := blocks[0]
	zone := model.SalesZone{
		Village:      village,
		BlockCount:   len(blocks),
		Province:     first.Province,
		District:     first.District,
		Subdistrict:  first.Subdistrict,
		LocationType: first.LocationType,
	}

	if len(blocks) == 1 {
		zone.ID = village + "_ZONE_1BLOCK"
	} else {
		zone.ID = fmt.Sprintf("%s_ZONE_%dBLOCKS", village, len(blocks))
	}

	var scoreSum, agingSum, latSum, lngSum float64
	statuses := make([]string, 0, len(blocks))
	labels := make([]string, 0, len(blocks))
	for _, b := range blocks {
		zone.Blocks = append(zone.Blocks, b.ID)
		zone.L2Count += b.L2Count
		zone.AvailPorts += b.AvailPorts
		zone.BlockAvailPorts += b.BlockAvailPorts
		scoreSum += b.PriorityScore
		agingSum += b.AvgAgingDays
		latSum += b.Latitude
		lngSum += b.Longitude
		statuses = append(statuses, string(b.InstallStatus))
		labels = append(labels, string(b.PriorityLabel))
	}

	n := float64(len(blocks))
	zone.PriorityScore = round1(scoreSum / n)
	zone.AvgAgingDays = round1(agingSum / n)
	zone.Latitude = round6(latSum / n)
	zone.Longitude = round6(lngSum / n)
	zone.InstallStatus = model.InstallStatus(mode(statuses, string(model.InstallOld)))
	zone.PriorityLabel = model.PriorityLabel(mode(labels, string(model.PriorityLow)))
	return zone
}

// PrioritizeZones caps a sorted zone list at topN when topN > 0.
func PrioritizeZones(zones []model.SalesZone, topN int) []model.SalesZone {
	out := make([]model.SalesZone, len(zones))
	copy(out, zones)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out
}

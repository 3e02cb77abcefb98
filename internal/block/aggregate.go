// Package block aggregates scored L2 records into Happy Blocks, groups the
// blocks into per-village sales zones, and computes run summaries.
package block

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Aggregate rolls L2 records up into one Happy Block per grid cell. Scores
// and aging are averaged, ports summed, and labels taken from the dominant
// value across the block's L2s. Blocks come back sorted by ID.
func Aggregate(records []model.L2Port) []model.HappyBlock {
	type acc struct {
		block    model.HappyBlock
		scoreSum float64
		agingSum float64
		statuses []string
		labels   []string
	}

	groups := make(map[string]*acc)
	order := make([]string, 0)
	now := time.Now()

	for _, l2 := range records {
		g, ok := groups[l2.HappyBlock]
		if !ok {
			g = &acc{block: model.HappyBlock{
				ID: l2.HappyBlock,
				// First record wins for labels and coordinates.
				Village:         l2.Village,
				Province:        l2.Province,
				District:        l2.District,
				Subdistrict:     l2.Subdistrict,
				LocationType:    l2.LocationType,
				Latitude:        l2.BlockLat,
				Longitude:       l2.BlockLng,
				BlockAvailPorts: l2.BlockAvailPorts,
				UpdatedAt:       now,
			}}
			groups[l2.HappyBlock] = g
			order = append(order, l2.HappyBlock)
		}

		g.block.L2Count++
		g.block.AvailPorts += l2.AvailPorts
		g.scoreSum += l2.PriorityScore
		g.agingSum += l2.AgingDays
		g.statuses = append(g.statuses, string(l2.InstallStatus))
		g.labels = append(g.labels, string(l2.PriorityLabel))
	}

	sort.Strings(order)

	blocks := make([]model.HappyBlock, 0, len(order))
	for _, id := range order {
		g := groups[id]
		n := float64(g.block.L2Count)
		g.block.PriorityScore = round1(g.scoreSum / n)
		g.block.AvgAgingDays = round1(g.agingSum / n)
		g.block.InstallStatus = model.InstallStatus(mode(g.statuses, string(model.InstallOld)))
		g.block.PriorityLabel = model.PriorityLabel(mode(g.labels, string(model.PriorityLow)))
		blocks = append(blocks, g.block)
	}
	return blocks
}

// PrioritizeBlocks returns blocks sorted by score descending, capped at topN
// when topN > 0. The input is not modified.
func PrioritizeBlocks(blocks []model.HappyBlock, topN int) []model.HappyBlock {
	out := make([]model.HappyBlock, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out
}

// mode returns the most frequent value, breaking ties by the lexicographically
// smallest. Empty input yields the fallback.
func mode(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

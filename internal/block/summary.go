package block

import (
	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Summary holds run-level statistics reported after ingest and aggregation.
type Summary struct {
	TotalL2Records      int                           `json:"total_l2_records"`
	TotalHappyBlocks    int                           `json:"total_happy_blocks"`
	TotalVillages       int                           `json:"total_villages"`
	AvgL2PerVillage     float64                       `json:"avg_l2_per_village"`
	PriorityCounts      map[model.PriorityLabel]int   `json:"priority_counts"`
	InstallCounts       map[model.InstallStatus]int   `json:"install_counts"`
	AvgPortsPerBlock    float64                       `json:"avg_ports_per_block"`
	TotalAvailablePorts int                           `json:"total_available_ports"`
}

// Summarize computes summary statistics over the raw records and their
// aggregated blocks.
func Summarize(records []model.L2Port, blocks []model.HappyBlock) Summary {
	s := Summary{
		TotalL2Records:   len(records),
		TotalHappyBlocks: len(blocks),
		PriorityCounts:   make(map[model.PriorityLabel]int),
		InstallCounts:    make(map[model.InstallStatus]int),
	}

	villages := make(map[string]bool)
	for _, l2 := range records {
		villages[l2.Village] = true
	}
	s.TotalVillages = len(villages)
	if s.TotalVillages > 0 {
		s.AvgL2PerVillage = round1(float64(len(records)) / float64(s.TotalVillages))
	}

	var portSum int
	for _, b := range blocks {
		s.PriorityCounts[b.PriorityLabel]++
		s.InstallCounts[b.InstallStatus]++
		portSum += b.BlockAvailPorts
	}
	s.TotalAvailablePorts = portSum
	if len(blocks) > 0 {
		s.AvgPortsPerBlock = round1(float64(portSum) / float64(len(blocks)))
	}
	return s
}

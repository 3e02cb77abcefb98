// Package model defines the core domain types shared across the pipeline.
package model

// L2Port is a single L2 splitter record from the weekly ports utilization dump.
type L2Port struct {
	Name         string `json:"name"` // splitter identifier (splt_l2)
	HappyBlock   string `json:"happy_block"`
	Village      string `json:"village"` // rollout location name
	Province     string `json:"province"`
	District     string `json:"district"`
	Subdistrict  string `json:"subdistrict"`
	LocationType string `json:"location_type"`

	// Equipment coordinates.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Happy Block centroid as recorded in the dump.
	BlockLat float64 `json:"block_lat"`
	BlockLng float64 `json:"block_lng"`

	TotalPorts      int     `json:"total_ports"`
	UsedPorts       int     `json:"used_ports"`
	AvailPorts      int     `json:"avail_ports"`
	BlockAvailPorts int     `json:"block_avail_ports"` // total available across the block
	UtilizationPct  float64 `json:"utilization_pct"`
	AgingDays       float64 `json:"aging_days"` // days since in-service

	// Computed during ingest.
	PriorityScore float64       `json:"priority_score"`
	PriorityLabel PriorityLabel `json:"priority_label"`
	InstallStatus InstallStatus `json:"install_status"`
}

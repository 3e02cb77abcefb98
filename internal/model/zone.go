package model

// SalesZone groups every Happy Block belonging to one village so that
// multi-block villages are worked as a single unit.
type SalesZone struct {
	ID              string        `json:"id"` // "<village>_ZONE_<n>BLOCKS"
	Village         string        `json:"village"`
	BlockCount      int           `json:"block_count"`
	Blocks          []string      `json:"blocks"`
	L2Count         int           `json:"l2_count"`
	AvailPorts      int           `json:"avail_ports"`
	BlockAvailPorts int           `json:"block_avail_ports"`
	PriorityScore   float64       `json:"priority_score"`
	PriorityLabel   PriorityLabel `json:"priority_label"`
	AvgAgingDays    float64       `json:"avg_aging_days"`
	InstallStatus   InstallStatus `json:"install_status"`
	Latitude        float64       `json:"latitude"` // centroid of member blocks
	Longitude       float64       `json:"longitude"`
	Province        string        `json:"province"`
	District        string        `json:"district"`
	Subdistrict     string        `json:"subdistrict"`
	LocationType    string        `json:"location_type"`
}

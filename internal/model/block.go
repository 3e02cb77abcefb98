package model

import (
	"fmt"
	"time"
)

// PriorityLabel buckets a priority score into sales bands.
type PriorityLabel string

// Priority bands, highest first.
const (
	PriorityVeryHigh PriorityLabel = "VERY_HIGH"
	PriorityHigh     PriorityLabel = "HIGH"
	PriorityMedium   PriorityLabel = "MEDIUM"
	PriorityLow      PriorityLabel = "LOW"
	PriorityVeryLow  PriorityLabel = "VERY_LOW"
)

// InstallStatus classifies equipment by in-service aging.
type InstallStatus string

// Installation status values.
const (
	InstallNew    InstallStatus = "New"
	InstallMedium InstallStatus = "Medium"
	InstallOld    InstallStatus = "Old"
)

// HappyBlock is the per-grid-cell aggregate of all L2 records inside it.
type HappyBlock struct {
	ID              string        `json:"id"`
	Village         string        `json:"village"` // primary village name
	L2Count         int           `json:"l2_count"`
	AvailPorts      int           `json:"avail_ports"`
	BlockAvailPorts int           `json:"block_avail_ports"`
	PriorityScore   float64       `json:"priority_score"`
	PriorityLabel   PriorityLabel `json:"priority_label"`
	AvgAgingDays    float64       `json:"avg_aging_days"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	Province        string        `json:"province"`
	District        string        `json:"district"`
	Subdistrict     string        `json:"subdistrict"`
	LocationType    string        `json:"location_type"`
	InstallStatus   InstallStatus `json:"install_status"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// MapsURL returns a Google Maps search link for the block centroid.
func (b HappyBlock) MapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", b.Latitude, b.Longitude)
}

package model

import "time"

// Report row levels.
const (
	LevelOverview = "OVERVIEW"
	LevelDetail   = "DETAIL"
)

// ReportRow is one line of the two-level sales report: an OVERVIEW row per
// Happy Block followed by a DETAIL row per L2 inside it.
type ReportRow struct {
	Level           string        `json:"level"`
	HappyBlock      string        `json:"happy_block"`
	Village         string        `json:"village"`
	L2Count         int           `json:"l2_count,omitempty"`
	PriorityScore   float64       `json:"priority_score"`
	PriorityLabel   PriorityLabel `json:"priority_label"`
	AvailPorts      int           `json:"avail_ports"`
	Province        string        `json:"province,omitempty"`
	District        string        `json:"district,omitempty"`
	Subdistrict     string        `json:"subdistrict,omitempty"`
	LocationType    string        `json:"location_type,omitempty"`
	POIName         string        `json:"poi_name,omitempty"`
	POIAddress      string        `json:"poi_address,omitempty"`
	POIRemark       string        `json:"poi_remark,omitempty"`
	TimingWeekday   string        `json:"timing_weekday,omitempty"`
	TimingWeekend   string        `json:"timing_weekend,omitempty"`
	BestDay         string        `json:"best_day,omitempty"`
	VisitWindow     string        `json:"visit_window,omitempty"`
	ActivityLevel   string        `json:"activity_level,omitempty"`
	MapsURL         string        `json:"maps_url"`
	TimingStatus    string        `json:"timing_status,omitempty"`
	DataSource      string        `json:"data_source,omitempty"`
	BestTimeVenueID string        `json:"besttime_venue_id,omitempty"`
	Recommendations string        `json:"recommendations,omitempty"`

	// DETAIL-only columns.
	L2Name        string        `json:"l2_name,omitempty"`
	InstallStatus InstallStatus `json:"install_status,omitempty"`
	CoverageNotes string        `json:"coverage_notes,omitempty"`
}

// Report run states.
const (
	RunPending  = "pending"
	RunComplete = "complete"
	RunFailed   = "failed"
)

// ReportRun records one report generation for audit and the dashboard run
// history.
type ReportRun struct {
	ID          string     `json:"id"`
	Area        string     `json:"area"` // human description of the filter, e.g. "Surat Thani / Mueang"
	Status      string     `json:"status"`
	RowCount    int        `json:"row_count"`
	OutputPath  string     `json:"output_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

package model

// Timing data sources, most to least trustworthy.
const (
	TimingLive     = "forecast_live"
	TimingLocation = "location_fallback"
	TimingGeneric  = "fallback_generic"
)

// TimingPattern holds the recommended door-knocking hours for a block,
// derived from foot traffic at its indicator POI.
type TimingPattern struct {
	VenueName     string     `json:"venue_name"`
	VenueID       string     `json:"venue_id,omitempty"`
	Weekday       []string   `json:"weekday"` // peak hours, "HH:00"
	Weekend       []string   `json:"weekend"`
	BestDay       string     `json:"best_day"`
	VisitWindow   string     `json:"visit_window,omitempty"` // best contiguous hours, "HH:00-HH:00"
	ActivityLevel string     `json:"activity_level"` // High / Medium
	Status        string     `json:"status"`         // one of the Timing* constants
	Confidence    Confidence `json:"confidence"`
	DataSource    string     `json:"data_source"`
}

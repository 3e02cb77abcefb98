package model

// Confidence grades how well a POI reflects residential activity at a block.
type Confidence string

// Confidence levels. HIGH means a convenience store within 1 km, MEDIUM any
// retail within 2 km, LOW a fallback match within 3 km.
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceNone   Confidence = "NONE"
)

// SearchStatus records where the POI for a block was found.
type SearchStatus string

// Search outcomes for the block-level POI lookup.
const (
	SearchFoundCurrent SearchStatus = "found_current"
	SearchFoundNearby  SearchStatus = "found_nearby"
	SearchNotFound     SearchStatus = "not_found"
)

// POI is the indicator point of interest chosen for a Happy Block.
type POI struct {
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	PlaceID       string       `json:"place_id"`
	DistanceKM    float64      `json:"distance_km"`
	Rating        float64      `json:"rating"`
	Types         []string     `json:"types,omitempty"`
	SearchKeyword string       `json:"search_keyword,omitempty"`
	Confidence    Confidence   `json:"confidence"`
	Status        SearchStatus `json:"status"`
	SourceBlock   string       `json:"source_block,omitempty"` // neighbor block the POI came from
	Remark        string       `json:"remark,omitempty"`
}

// Package poi selects the indicator point of interest for a Happy Block.
// Store foot traffic stands in for residential activity, so the search
// prefers community convenience stores and skips destination malls.
package poi

import (
	"strings"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// strategy is one keyword search in the community store lookup. Lower
// priority numbers are preferred brands.
type strategy struct {
	Keyword  string
	Type     string
	Priority int
}

// communityStrategies orders the block-level search by brand preference.
// Thai keyword variants catch listings without an English name.
var communityStrategies = []strategy{
	{"7-Eleven", "convenience_store", 1},
	{"เซเว่น", "convenience_store", 1},
	{"Seven Eleven", "convenience_store", 1},

	{"FamilyMart", "convenience_store", 2},
	{"Family Mart", "convenience_store", 2},

	{"Lotus Go Fresh", "convenience_store", 3},
	{"Lotus Express", "convenience_store", 3},
	{"Lotus Mini", "convenience_store", 3},

	{"Big C Go Fresh", "convenience_store", 4},
	{"Big C Mini", "convenience_store", 4},

	{"CP Freshmart", "convenience_store", 5},
	{"Mini Mart", "convenience_store", 5},
	{"108 Shop", "convenience_store", 5},
	{"Lawson", "convenience_store", 5},
}

// mallKeywords mark destination retail whose traffic says nothing about the
// surrounding residential block.
var mallKeywords = []string{
	"CENTRAL", "ROBINSON", "MALL", "PLAZA", "FESTIVAL",
	"SUPERCENTER", "HYPERMARKET", "DEPARTMENT", "SHOPPING CENTER",
}

func isMall(name string) bool {
	upper := strings.ToUpper(name)
	for _, kw := range mallKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// zoneSearch is one keyword search inside a confidence zone.
type zoneSearch struct {
	Keyword string
	Type    string
	Radius  int
}

// confidenceZone widens the residential-indicator search while downgrading
// confidence: close convenience stores first, any retail last.
type confidenceZone struct {
	Level    model.Confidence
	MaxKM    float64
	Searches []zoneSearch
}

var confidenceZones = []confidenceZone{
	{
		Level: model.ConfidenceHigh,
		MaxKM: 1.0,
		Searches: []zoneSearch{
			{"7-Eleven", "convenience_store", 1000},
			{"เซเว่น", "convenience_store", 1000},
			{"FamilyMart", "convenience_store", 1000},
			{"Lotus Express", "convenience_store", 1000},
			{"CP Freshmart", "convenience_store", 1000},
			{"Big C Mini", "convenience_store", 1000},
		},
	},
	{
		Level: model.ConfidenceMedium,
		MaxKM: 2.0,
		Searches: []zoneSearch{
			{"7-Eleven", "convenience_store", 2000},
			{"Big C", "supermarket", 2000},
			{"Lotus", "supermarket", 2000},
			{"Makro", "supermarket", 2000},
			{"ห้างสรรพสินค้า", "shopping_mall", 2000},
		},
	},
	{
		Level: model.ConfidenceLow,
		MaxKM: 3.0,
		Searches: []zoneSearch{
			{"convenience store", "convenience_store", 3000},
			{"supermarket", "supermarket", 3000},
			{"ตลาด", "establishment", 3000},
			{"ร้านค้า", "store", 3000},
			{"shopping mall", "shopping_mall", 3000},
		},
	},
}

// convenienceBrands identify stores that count as convenience retail by name
// even when the listing lacks the convenience_store type.
var convenienceBrands = []string{"7-ELEVEN", "เซเว่น", "CP", "LOTUS"}

func isConvenience(name string, types []string) bool {
	if hasType(types, "convenience_store") {
		return true
	}
	upper := strings.ToUpper(name)
	for _, brand := range convenienceBrands {
		if strings.Contains(upper, brand) {
			return true
		}
	}
	return false
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

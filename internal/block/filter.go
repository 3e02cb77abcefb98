package block

import (
	"sort"
	"strings"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Filter narrows a block set to an area of interest. String fields match
// case-insensitively; empty fields match everything.
type Filter struct {
	Province    string
	District    string
	Subdistrict string
	Villages    []string
	Blocks      []string
	MinScore    float64
}

// Apply returns the blocks passing every set criterion.
func (f Filter) Apply(blocks []model.HappyBlock) []model.HappyBlock {
	villages := toSet(f.Villages)
	ids := toSet(f.Blocks)

	var out []model.HappyBlock
	for _, b := range blocks {
		if !matches(f.Province, b.Province) ||
			!matches(f.District, b.District) ||
			!matches(f.Subdistrict, b.Subdistrict) {
			continue
		}
		if len(villages) > 0 && !villages[strings.ToLower(b.Village)] {
			continue
		}
		if len(ids) > 0 && !ids[strings.ToLower(b.ID)] {
			continue
		}
		if b.PriorityScore < f.MinScore {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}

// Area is one administrative area present in the data set.
type Area struct {
	Province    string `json:"province"`
	District    string `json:"district"`
	Subdistrict string `json:"subdistrict"`
	BlockCount  int    `json:"block_count"`
}

// Areas lists the distinct administrative areas covered by the blocks,
// sorted by province, district, then subdistrict.
func Areas(blocks []model.HappyBlock) []Area {
	type key struct{ p, d, s string }
	counts := make(map[key]int)
	for _, b := range blocks {
		counts[key{b.Province, b.District, b.Subdistrict}]++
	}

	areas := make([]Area, 0, len(counts))
	for k, n := range counts {
		areas = append(areas, Area{Province: k.p, District: k.d, Subdistrict: k.s, BlockCount: n})
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Province != areas[j].Province {
			return areas[i].Province < areas[j].Province
		}
		if areas[i].District != areas[j].District {
			return areas[i].District < areas[j].District
		}
		return areas[i].Subdistrict < areas[j].Subdistrict
	})
	return areas
}

package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Dump column names. The upstream export mixes snake_case and display names.
const (
	colL2Name       = "splt_l2"
	colHappyBlock   = "happy_block"
	colVillage      = "rollout location name"
	colProvince     = "province"
	colDistrict     = "district"
	colSubdistrict  = "subdistrict"
	colLocationType = "location type"
	colLatitude     = "latitude"
	colLongitude    = "longitude"
	colBlockLat     = "lat_happy_block"
	colBlockLng     = "long_happy_block"
	colTotalPorts   = "sum_tol_port"
	colUsedPorts    = "sum_tol_act"
	colAvailPorts   = "sum_tol_avail"
	colBlockAvail   = "tol_avail_by_hhb"
	colUtilization  = "percent_utilization"
	colAging        = "inservice_aging"
)

// headerMap maps lowercased column names to their index in the header row.
type headerMap map[string]int

func newHeaderMap(header []string) headerMap {
	m := make(headerMap, len(header))
	for i, name := range header {
		m[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return m
}

// requiredColumns must be present for a dump to be parseable at all.
var requiredColumns = []string{
	colL2Name, colHappyBlock, colVillage,
	colBlockLat, colBlockLng, colAvailPorts, colAging,
}

func (h headerMap) validate() error {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("ingest: dump missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (h headerMap) str(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// thaiText normalizes a location name to NFC. The upstream exports mix
// composed and decomposed Thai vowel sequences, which breaks grouping.
func thaiText(s string) string {
	return norm.NFC.String(s)
}

func (h headerMap) float(row []string, col string) (float64, bool) {
	s := h.str(row, col)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (h headerMap) int(row []string, col string) (int, bool) {
	v, ok := h.float(row, col)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// parseRow builds an L2 record from one dump row. It returns false when the
// row fails the cleaning filter: block coordinates, village, available ports,
// and aging must all be present.
func (h headerMap) parseRow(row []string) (model.L2Port, bool) {
	blockLat, okLat := h.float(row, colBlockLat)
	blockLng, okLng := h.float(row, colBlockLng)
	avail, okAvail := h.int(row, colAvailPorts)
	aging, okAging := h.float(row, colAging)
	village := thaiText(h.str(row, colVillage))

	if !okLat || !okLng || !okAvail || !okAging || village == "" {
		return model.L2Port{}, false
	}

	l2 := model.L2Port{
		Name:         h.str(row, colL2Name),
		HappyBlock:   h.str(row, colHappyBlock),
		Village:      village,
		Province:     thaiText(h.str(row, colProvince)),
		District:     thaiText(h.str(row, colDistrict)),
		Subdistrict:  thaiText(h.str(row, colSubdistrict)),
		LocationType: h.str(row, colLocationType),
		BlockLat:     blockLat,
		BlockLng:     blockLng,
		AvailPorts:   avail,
		AgingDays:    aging,
	}

	l2.Latitude, _ = h.float(row, colLatitude)
	l2.Longitude, _ = h.float(row, colLongitude)
	l2.TotalPorts, _ = h.int(row, colTotalPorts)
	l2.UsedPorts, _ = h.int(row, colUsedPorts)
	l2.BlockAvailPorts, _ = h.int(row, colBlockAvail)
	l2.UtilizationPct, _ = h.float(row, colUtilization)

	return l2, true
}

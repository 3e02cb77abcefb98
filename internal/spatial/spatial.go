// Package spatial implements the Happy Block milligrid: block IDs encode a
// 0.005 degree lat/lng cell, and neighbor rings expand a search outward from
// a cell in widening steps.
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
)

const (
	// Grid step in millidegrees. One block spans 0.005 x 0.005 degrees.
	gridStep = 5

	earthRadiusKM = 6371
)

// BlockID is a Happy Block grid cell, addressed by its lat and lng
// coordinates in millidegrees (degrees * 1000, truncated to the grid step).
type BlockID struct {
	LatGrid int
	LngGrid int
}

// ParseBlockID parses the canonical "09320-099700" form.
func ParseBlockID(s string) (BlockID, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return BlockID{}, eris.Errorf("spatial: malformed block id %q", s)
	}
	latGrid, err := strconv.Atoi(parts[0])
	if err != nil {
		return BlockID{}, eris.Wrapf(err, "spatial: block id %q lat grid", s)
	}
	lngGrid, err := strconv.Atoi(parts[1])
	if err != nil {
		return BlockID{}, eris.Wrapf(err, "spatial: block id %q lng grid", s)
	}
	return BlockID{LatGrid: latGrid, LngGrid: lngGrid}, nil
}

// BlockIDForPoint snaps a coordinate to its containing grid cell.
func BlockIDForPoint(lat, lng float64) BlockID {
	return BlockID{
		LatGrid: snap(lat),
		LngGrid: snap(lng),
	}
}

func snap(deg float64) int {
	milli := int(math.Floor(deg * 1000))
	return milli - mod(milli, gridStep)
}

// mod is a floor modulus so southern/western hemispheres snap correctly.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// String renders the canonical zero-padded form, e.g. "09320-099700".
func (b BlockID) String() string {
	return fmt.Sprintf("%05d-%06d", b.LatGrid, b.LngGrid)
}

// Centroid returns the cell's lower-left corner in degrees. Block coordinates
// in the source data reference this corner, not the geometric center.
func (b BlockID) Centroid() geom.Coord {
	return geom.Coord{float64(b.LngGrid) / 1000, float64(b.LatGrid) / 1000}
}

// Neighbors returns the surrounding cells for a given ring:
//
//	ring 1: the four edge-adjacent cells
//	ring 2: the four diagonal cells
//	ring 3: cells two steps out along each axis plus their offsets
//
// Rings do not include inner rings; callers walk them in order.
func (b BlockID) Neighbors(ring int) []BlockID {
	var offsets [][2]int
	switch ring {
	case 1:
		offsets = [][2]int{{gridStep, 0}, {-gridStep, 0}, {0, gridStep}, {0, -gridStep}}
	case 2:
		offsets = [][2]int{
			{gridStep, gridStep}, {gridStep, -gridStep},
			{-gridStep, gridStep}, {-gridStep, -gridStep},
		}
	case 3:
		offsets = [][2]int{
			{2 * gridStep, 0}, {-2 * gridStep, 0}, {0, 2 * gridStep}, {0, -2 * gridStep},
			{2 * gridStep, gridStep}, {2 * gridStep, -gridStep},
			{-2 * gridStep, gridStep}, {-2 * gridStep, -gridStep},
		}
	default:
		return nil
	}

	out := make([]BlockID, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, BlockID{LatGrid: b.LatGrid + o[0], LngGrid: b.LngGrid + o[1]})
	}
	return out
}

// MaxRing is the widest neighbor ring searched during fallback.
const MaxRing = 3

// Haversine returns the great-circle distance in kilometers between two
// lng/lat coordinates.
func Haversine(a, b geom.Coord) float64 {
	lat1 := a[1] * math.Pi / 180
	lat2 := b[1] * math.Pi / 180
	dLat := (b[1] - a[1]) * math.Pi / 180
	dLng := (b[0] - a[0]) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

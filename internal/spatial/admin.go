package spatial

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// AdminArea is one administrative region from a boundary shapefile.
type AdminArea struct {
	Province    string
	District    string
	Subdistrict string
}

type adminPolygon struct {
	area  AdminArea
	bbox  shp.Box
	rings [][]geom.Coord
}

// Regions holds administrative boundary polygons for point lookups. Blocks
// arriving without province/district labels get them backfilled from here.
type Regions struct {
	polygons []adminPolygon
}

// Attribute field names for the subdistrict-level boundary shapefile.
const (
	fieldProvince    = "ADM1_EN"
	fieldDistrict    = "ADM2_EN"
	fieldSubdistrict = "ADM3_EN"
)

// LoadRegions reads a polygon shapefile of administrative boundaries.
func LoadRegions(path string) (*Regions, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	provIdx := fieldIndex(reader, fieldProvince)
	distIdx := fieldIndex(reader, fieldDistrict)
	subIdx := fieldIndex(reader, fieldSubdistrict)
	if provIdx < 0 {
		return nil, eris.Errorf("spatial: shapefile %s missing %s field", path, fieldProvince)
	}

	log := zap.L().With(zap.String("component", "spatial.regions"))

	r := &Regions{}
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly.NumParts == 0 {
			continue
		}

		ap := adminPolygon{
			area: AdminArea{Province: strings.TrimSpace(reader.Attribute(provIdx))},
			bbox: poly.Box,
		}
		if distIdx >= 0 {
			ap.area.District = strings.TrimSpace(reader.Attribute(distIdx))
		}
		if subIdx >= 0 {
			ap.area.Subdistrict = strings.TrimSpace(reader.Attribute(subIdx))
		}

		ap.rings = polygonRings(poly)
		if len(ap.rings) == 0 {
			continue
		}
		r.polygons = append(r.polygons, ap)
	}

	if len(r.polygons) == 0 {
		return nil, eris.Errorf("spatial: shapefile %s contained no usable polygons", path)
	}
	log.Info("administrative boundaries loaded",
		zap.String("path", path),
		zap.Int("polygons", len(r.polygons)),
	)
	return r, nil
}

// polygonRings splits a shapefile polygon into its component rings.
func polygonRings(p *shp.Polygon) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}
		ring := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

// Locate returns the administrative area containing the point, or false when
// no polygon contains it. Bounding boxes gate the ring tests.
func (r *Regions) Locate(lat, lng float64) (AdminArea, bool) {
	pt := geom.Coord{lng, lat}
	for _, poly := range r.polygons {
		if lng < poly.bbox.MinX || lng > poly.bbox.MaxX ||
			lat < poly.bbox.MinY || lat > poly.bbox.MaxY {
			continue
		}
		// The outer ring is the first part. A hit inside a hole ring after
		// the outer ring means the point is excluded.
		if !inRing(pt, poly.rings[0]) {
			continue
		}
		inHole := false
		for _, hole := range poly.rings[1:] {
			if inRing(pt, hole) {
				inHole = true
				break
			}
		}
		if !inHole {
			return poly.area, true
		}
	}
	return AdminArea{}, false
}

func inRing(pt geom.Coord, ring []geom.Coord) bool {
	flat := make([]float64, 0, len(ring)*2)
	for _, c := range ring {
		flat = append(flat, c[0], c[1])
	}
	return xy.IsPointInRing(geom.XY, pt, flat)
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

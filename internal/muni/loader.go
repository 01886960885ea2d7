package muni

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadShapefile reads municipality boundary polygons from a shapefile,
// taking the localized name from nameField.
func LoadShapefile(path, nameField string) ([]Municipality, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "muni: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	nameIdx, ok := fieldIdx[strings.ToLower(nameField)]
	if !ok {
		return nil, eris.Errorf("muni: shapefile %s has no field %q", path, nameField)
	}

	log := zap.L().With(zap.String("component", "muni.loader"))

	var munis []Municipality
	var skipped int
	for reader.Next() {
		num, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		ring := exteriorRing(poly)
		if ring == nil {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			log.Warn("municipality polygon has no name", zap.Int("record", num))
			skipped++
			continue
		}

		munis = append(munis, Municipality{Name: name, Boundary: ring})
	}

	if skipped > 0 {
		log.Debug("skipped boundary records",
			zap.String("file", path),
			zap.Int("skipped", skipped),
		)
	}

	return munis, nil
}

// exteriorRing extracts the outer ring of the polygon's first part and
// closes it if the source left it open.
func exteriorRing(p *shp.Polygon) orb.Ring {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	pts := p.Points[p.Parts[0]:end]
	if len(pts) < 3 {
		return nil
	}

	ring := make(orb.Ring, 0, len(pts)+1)
	for _, pt := range pts {
		ring = append(ring, orb.Point{pt.X, pt.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

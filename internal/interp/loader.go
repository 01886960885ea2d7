package interp

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FieldMap names the shapefile attribute columns carrying street names
// and address ranges.
type FieldMap struct {
	Street    string
	AltStreet string
	LeftFrom  string
	LeftTo    string
	RightFrom string
	RightTo   string
}

// DefaultFieldMap matches TIGER/Line edge shapefiles.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Street:    "FULLNAME",
		AltStreet: "",
		LeftFrom:  "LFROMADD",
		LeftTo:    "LTOADD",
		RightFrom: "RFROMADD",
		RightTo:   "RTOADD",
	}
}

// LoadShapefile reads road segments with address ranges from a
// shapefile. Records without a street name or without any usable
// address range are skipped.
func LoadShapefile(path string, fields FieldMap) ([]Segment, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "interp: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	shpFields := reader.Fields()
	fieldIdx := make(map[string]int, len(shpFields))
	for i, f := range shpFields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	lookup := func(name string) (int, bool) {
		if name == "" {
			return 0, false
		}
		idx, ok := fieldIdx[strings.ToLower(name)]
		return idx, ok
	}

	streetIdx, ok := lookup(fields.Street)
	if !ok {
		return nil, eris.Errorf("interp: shapefile %s has no street field %q", path, fields.Street)
	}
	altIdx, hasAlt := lookup(fields.AltStreet)
	lFromIdx, okLF := lookup(fields.LeftFrom)
	lToIdx, okLT := lookup(fields.LeftTo)
	rFromIdx, okRF := lookup(fields.RightFrom)
	rToIdx, okRT := lookup(fields.RightTo)
	if !okLF || !okLT || !okRF || !okRT {
		return nil, eris.Errorf("interp: shapefile %s is missing address range fields", path)
	}

	log := zap.L().With(zap.String("component", "interp.loader"))

	attr := func(idx int) string {
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var segs []Segment
	var skipped int
	for reader.Next() {
		num, shape := reader.Shape()

		street := attr(streetIdx)
		if street == "" {
			skipped++
			continue
		}

		left := parseRange(attr(lFromIdx), attr(lToIdx))
		right := parseRange(attr(rFromIdx), attr(rToIdx))
		if !left.Valid() && !right.Valid() {
			skipped++
			continue
		}

		var line orb.LineString
		switch s := shape.(type) {
		case *shp.PolyLine:
			line = lineFromPolyLine(s)
		default:
			skipped++
			continue
		}
		if len(line) < 2 {
			skipped++
			continue
		}

		seg := Segment{
			ID:     int64(num),
			Street: street,
			Left:   left,
			Right:  right,
			Line:   line,
		}
		if hasAlt {
			seg.AltStreet = attr(altIdx)
		}
		segs = append(segs, seg)
	}

	if skipped > 0 {
		log.Debug("skipped road records",
			zap.String("file", path),
			zap.Int("skipped", skipped),
		)
	}

	return segs, nil
}

// parseRange reads a from/to attribute pair into a Range, normalizing
// reversed bounds. Unparseable or absent values yield an invalid range.
func parseRange(from, to string) Range {
	min, err := strconv.Atoi(from)
	if err != nil || min <= 0 {
		return Range{}
	}
	max, err := strconv.Atoi(to)
	if err != nil || max <= 0 {
		return Range{}
	}
	if min > max {
		min, max = max, min
	}
	return Range{Min: min, Max: max}
}

// lineFromPolyLine converts the first part of a polyline shape.
func lineFromPolyLine(p *shp.PolyLine) orb.LineString {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	pts := p.Points[p.Parts[0]:end]

	line := make(orb.LineString, 0, len(pts))
	for _, pt := range pts {
		line = append(line, orb.Point{pt.X, pt.Y})
	}
	return line
}

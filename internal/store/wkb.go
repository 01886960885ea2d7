package store

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// lineToEWKB converts a line string to EWKB bytes with SRID 4326 for the
// PostGIS geometry column.
func lineToEWKB(line orb.LineString) ([]byte, error) {
	if len(line) < 2 {
		return nil, eris.New("store: line needs at least two points")
	}

	flat := make([]float64, 0, len(line)*2)
	for _, p := range line {
		flat = append(flat, p[0], p[1])
	}

	g := geom.NewLineStringFlat(geom.XY, flat).SetSRID(4326)

	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "store: encode EWKB")
	}
	return data, nil
}

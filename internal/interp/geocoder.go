package interp

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/rotisserie/eris"
)

// ErrNoMatch is returned when no segment covers the requested address.
var ErrNoMatch = eris.New("interp: no segment matches address")

// Geocoder interpolates house number positions over a set of road
// segments.
type Geocoder struct {
	segments []Segment
}

// NewGeocoder builds a geocoder over the given segments. Segments are
// ordered by ID so lookups resolve ties deterministically.
func NewGeocoder(segments []Segment) *Geocoder {
	segs := make([]Segment, len(segments))
	copy(segs, segments)
	sort.Slice(segs, func(i, j int) bool { return segs[i].ID < segs[j].ID })
	return &Geocoder{segments: segs}
}

// Len returns the number of segments held.
func (g *Geocoder) Len() int { return len(g.segments) }

// Interpolate estimates the location of the given house number on the
// named street. The number's parity selects the road side. When
// several segments cover the number, the one with the lowest ID wins.
func (g *Geocoder) Interpolate(street string, number int) (orb.Point, error) {
	if street == "" || number <= 0 {
		return orb.Point{}, ErrNoMatch
	}
	side := SideFor(number)
	for _, seg := range g.segments {
		if !seg.MatchesStreet(street) {
			continue
		}
		rng := seg.Range(side)
		if !rng.Contains(number) {
			continue
		}
		if len(seg.Line) < 2 {
			continue
		}
		return PointAlong(seg.Line, fraction(rng, number)), nil
	}
	return orb.Point{}, ErrNoMatch
}

// fraction maps a house number to its relative position along the
// range. A single-number range places the address at the midpoint.
func fraction(r Range, n int) float64 {
	if r.Min == r.Max {
		return 0.5
	}
	return float64(n-r.Min) / float64(r.Max-r.Min)
}

// PointAlong walks the line by arc length and returns the point at the
// given fraction of its total length.
func PointAlong(line orb.LineString, frac float64) orb.Point {
	if frac <= 0 {
		return line[0]
	}
	if frac >= 1 {
		return line[len(line)-1]
	}

	var total float64
	for i := 1; i < len(line); i++ {
		total += geo.Distance(line[i-1], line[i])
	}
	if total == 0 {
		return line[0]
	}

	target := frac * total
	var walked float64
	for i := 1; i < len(line); i++ {
		d := geo.Distance(line[i-1], line[i])
		if walked+d >= target {
			t := (target - walked) / d
			a, b := line[i-1], line[i]
			return orb.Point{
				a[0] + t*(b[0]-a[0]),
				a[1] + t*(b[1]-a[1]),
			}
		}
		walked += d
	}
	return line[len(line)-1]
}

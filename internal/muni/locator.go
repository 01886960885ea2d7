// Package muni answers point-to-municipality queries against a set of
// boundary polygons loaded once per run.
package muni

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

// Municipality is one named boundary polygon. Boundary is the exterior ring
// of the first part of the source multi-polygon only; interior holes and
// additional disjoint parts are ignored for this lookup.
type Municipality struct {
	Name     string
	Boundary orb.Ring
}

// Locator indexes municipality bounding boxes in an R-tree and refines
// candidate hits with an exact containment test. Read-only after
// construction, so concurrent queries need no locking.
type Locator struct {
	tree  rtree.RTreeG[int]
	munis []Municipality
}

// NewLocator builds the spatial index over the given municipalities.
func NewLocator(munis []Municipality) *Locator {
	l := &Locator{munis: munis}
	for i, m := range munis {
		b := m.Boundary.Bound()
		l.tree.Insert([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}, i)
	}
	return l
}

// Locate returns the name of the first municipality whose boundary contains
// the point, or false when the point is outside all of them.
func (l *Locator) Locate(p orb.Point) (string, bool) {
	var (
		name  string
		found bool
	)
	pt := [2]float64{p[0], p[1]}
	l.tree.Search(pt, pt, func(_, _ [2]float64, i int) bool {
		if planar.PolygonContains(orb.Polygon{l.munis[i].Boundary}, p) {
			name, found = l.munis[i].Name, true
			return false
		}
		return true
	})
	return name, found
}

// Len returns the number of indexed municipalities.
func (l *Locator) Len() int {
	return len(l.munis)
}

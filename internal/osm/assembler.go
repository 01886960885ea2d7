package osm

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
)

// Assembler derives candidate address records from the cached nodes and
// ways and submits them to the merge store. Run only after street-relation
// linking has completed.
type Assembler struct {
	r     *Resolver
	store *MergeStore
	log   *zap.Logger
}

// NewAssembler creates an Assembler over a populated resolver.
func NewAssembler(r *Resolver, store *MergeStore) *Assembler {
	return &Assembler{
		r:     r,
		store: store,
		log:   zap.L().With(zap.String("component", "osm.assembler")),
	}
}

// Run performs the node pass followed by the way pass.
func (a *Assembler) Run() {
	a.assembleNodes()
	a.assembleWays()
}

// streetName resolves a street name from the entity's own tags, falling
// back to the linked street relation.
func (a *Assembler) streetName(tags Tags, associated int64) (string, bool) {
	if s, ok := tags[tagStreet]; ok {
		return s, true
	}
	if associated != 0 {
		if rel, ok := a.r.relations[associated]; ok {
			return rel.Name(), true
		}
	}
	return "", false
}

// unitAndEntrance extracts the unit letter (staircase as fallback) and the
// main-entrance flag from a node's tags.
func (a *Assembler) unitAndEntrance(id int64, tags Tags) (string, bool) {
	main := tags[tagEntrance] == "main"

	unit, hasUnit := tags[tagUnit]
	staircase, hasStaircase := tags[tagStaircase]
	if hasUnit && hasStaircase {
		a.log.Warn("node has both unit and staircase tags", zap.Int64("node", id))
	}
	if hasUnit {
		return unit, main
	}
	if hasStaircase {
		return staircase, main
	}
	return "", main
}

func (a *Assembler) assembleNodes() {
	for id, n := range a.r.nodes {
		number, ok := n.Tags[tagHouseNumber]
		if !ok {
			continue
		}
		street, ok := a.streetName(n.Tags, n.AssociatedStreet)
		if !ok {
			a.log.Debug("node with house number but no street", zap.Int64("node", id))
			continue
		}
		unit, main := a.unitAndEntrance(id, n.Tags)
		a.store.Add(Candidate{
			Street:       street,
			Number:       number,
			Unit:         unit,
			Location:     n.Location,
			MainEntrance: main,
		})
	}
}

func (a *Assembler) assembleWays() {
	for id, w := range a.r.ways {
		number, hasNumber := w.Tags[tagHouseNumber]

		switch {
		case hasNumber:
			street, ok := a.streetName(w.Tags, w.AssociatedStreet)
			if !ok {
				// Some ways clearly have address data but no related street
				// and no nodes carrying one; a human reader interprets those
				// from nearby features.
				a.log.Info("way with house number but no street", zap.Int64("way", id))
				continue
			}
			a.assembleNumberedWay(id, w, street, number)

		case w.Tags[tagStreet] != "":
			// The building outline holds the street name while the entrance
			// nodes hold the numbers.
			a.assembleStreetOnlyWay(id, w)

		default:
			a.log.Info("way with address data but no street or house number", zap.Int64("way", id))
		}
	}
}

// assembleNumberedWay submits one candidate per entrance-like member node,
// or a single centroid candidate when the way has none.
func (a *Assembler) assembleNumberedWay(id int64, w *Way, street, number string) {
	found := false
	for _, nid := range w.NodeIDs {
		n, ok := a.r.nodes[nid]
		if !ok {
			continue
		}
		unit, main := a.unitAndEntrance(nid, n.Tags)
		_, hasEntrance := n.Tags[tagEntrance]
		if unit == "" && !hasEntrance {
			continue
		}
		a.store.Add(Candidate{
			Street:       street,
			Number:       number,
			Unit:         unit,
			Location:     n.Location,
			MainEntrance: main,
		})
		// Don't stop at the first hit, there may be multiple entrances.
		found = true
	}
	if found {
		return
	}

	a.log.Info("no entrance found for way", zap.Int64("way", id))
	coords := a.resolveCoords(w.NodeIDs)
	if len(coords) < 3 {
		a.log.Warn("way has fewer than three coordinates", zap.Int64("way", id))
		return
	}
	a.store.Add(Candidate{
		Street:   street,
		Number:   number,
		Location: wayCentroid(coords),
	})
}

// assembleStreetOnlyWay attaches the way's street name to member nodes that
// carry a house number but no street of their own.
func (a *Assembler) assembleStreetOnlyWay(id int64, w *Way) {
	street := w.Tags[tagStreet]
	found := false
	for _, nid := range w.NodeIDs {
		n, ok := a.r.nodes[nid]
		if !ok {
			continue
		}
		number, hasNumber := n.Tags[tagHouseNumber]
		if !hasNumber {
			continue
		}
		if _, hasStreet := n.Tags[tagStreet]; hasStreet {
			continue
		}
		unit, main := a.unitAndEntrance(nid, n.Tags)
		a.store.Add(Candidate{
			Street:       street,
			Number:       number,
			Unit:         unit,
			Location:     n.Location,
			MainEntrance: main,
		})
		found = true
	}
	if !found {
		a.log.Info("no house number found for way", zap.Int64("way", id))
	}
}

// resolveCoords denormalizes member node IDs into coordinates, skipping any
// the extract never defined.
func (a *Assembler) resolveCoords(nodeIDs []int64) []orb.Point {
	coords := make([]orb.Point, 0, len(nodeIDs))
	for _, nid := range nodeIDs {
		p, ok := a.r.coords[nid]
		if !ok {
			a.log.Debug("way member node has no coordinate", zap.Int64("node", nid))
			continue
		}
		coords = append(coords, p)
	}
	return coords
}

// wayCentroid computes the geometric center of the polygon outlined by the
// way's member coordinates.
func wayCentroid(coords []orb.Point) orb.Point {
	ring := orb.Ring(coords)
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	centroid, _ := planar.CentroidArea(orb.Polygon{ring})
	return centroid
}

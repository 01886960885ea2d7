package osm

import "go.uber.org/zap"

// LinkStreets propagates street relations onto the cached nodes and ways
// they reference. Each entity keeps at most one associated street: the first
// relation to claim it wins, and a second, different relation is logged and
// ignored. Relation iteration order is map order, so callers must not depend
// on which relation wins a conflict.
func LinkStreets(r *Resolver) {
	log := zap.L().With(zap.String("component", "osm.linker"))

	for relID, rel := range r.relations {
		for _, m := range rel.Members {
			switch m.Kind {
			case KindWay:
				w, ok := r.ways[m.ID]
				if !ok {
					continue
				}
				if w.AssociatedStreet != 0 && w.AssociatedStreet != relID {
					log.Warn("way has more than one associated street",
						zap.Int64("way", m.ID),
						zap.Int64("kept", w.AssociatedStreet),
						zap.Int64("ignored", relID),
					)
					continue
				}
				w.AssociatedStreet = relID

			case KindNode:
				n, ok := r.nodes[m.ID]
				if !ok {
					continue
				}
				if n.AssociatedStreet != 0 && n.AssociatedStreet != relID {
					log.Warn("node has more than one associated street",
						zap.Int64("node", m.ID),
						zap.Int64("kept", n.AssociatedStreet),
						zap.Int64("ignored", relID),
					)
					continue
				}
				n.AssociatedStreet = relID
			}
		}
	}
}

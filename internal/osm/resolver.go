package osm

import (
	"context"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

// DefaultBulkSize is the POI emission batch size.
const DefaultBulkSize = 256

// POISink receives batches of point-of-interest documents. Emission is a
// side channel: sink failures are logged and never surfaced to the caller.
type POISink interface {
	BulkUpsertPOIs(ctx context.Context, docs []store.POIDoc) (int64, error)
}

// Resolver classifies a stream of raw extract elements into the per-run
// caches the later passes operate on. One Resolver per run; not safe for
// concurrent writers.
type Resolver struct {
	coords    map[int64]orb.Point
	nodes     map[int64]*Node
	ways      map[int64]*Way
	relations map[int64]*Relation

	sink     POISink
	bulkSize int
	pending  []store.POIDoc

	log *zap.Logger
}

// NewResolver creates an empty Resolver. sink may be nil to disable POI
// emission entirely, e.g. in tests.
func NewResolver(sink POISink, bulkSize int) *Resolver {
	if bulkSize <= 0 {
		bulkSize = DefaultBulkSize
	}
	return &Resolver{
		coords:    make(map[int64]orb.Point),
		nodes:     make(map[int64]*Node),
		ways:      make(map[int64]*Way),
		relations: make(map[int64]*Relation),
		sink:      sink,
		bulkSize:  bulkSize,
		log:       zap.L().With(zap.String("component", "osm.resolver")),
	}
}

// AddCoord caches a bare coordinate. Every node location is recorded so the
// way-centroid fallback can denormalize member node IDs later.
func (r *Resolver) AddCoord(id int64, lon, lat float64) {
	r.coords[id] = orb.Point{lon, lat}
}

// AddNode caches the node when it carries address-namespace tags and emits
// it as a POI when it is more than a provenance stub.
func (r *Resolver) AddNode(ctx context.Context, id int64, tags Tags, lon, lat float64) {
	if _, ok := tags["animal_spotting"]; ok {
		return
	}

	if tags.HasAddr() {
		r.nodes[id] = &Node{ID: id, Tags: tags, Location: orb.Point{lon, lat}}
	}

	if r.sink == nil {
		return
	}
	// Nodes with only a couple of tags are linked from somewhere else (the
	// vast majority are simply members of ways) and make useless POIs, as do
	// ones carrying nothing beyond an editor provenance marker.
	if len(tags) <= 2 {
		return
	}
	if _, ok := tags["created_by"]; ok && len(tags) <= 3 {
		return
	}

	r.pending = append(r.pending, store.POIDoc{OSMID: id, Tags: tags, Lon: lon, Lat: lat})
	if len(r.pending) >= r.bulkSize {
		r.flushPOIs(ctx)
	}
}

// AddWay caches the way when it carries address-namespace tags.
func (r *Resolver) AddWay(id int64, tags Tags, nodeIDs []int64) {
	if !tags.HasAddr() {
		return
	}
	r.ways[id] = &Way{ID: id, Tags: tags, NodeIDs: nodeIDs}
}

// AddRelation caches street-type relations that carry a name. Anything else
// (bus routes, multipolygons, ...) gives no useful address data.
func (r *Resolver) AddRelation(id int64, tags Tags, members []Member) {
	relType := tags[tagType]
	if relType != "street" && relType != "associatedStreet" {
		return
	}
	if _, ok := tags[tagName]; !ok {
		r.log.Warn("street relation has no name",
			zap.Int64("relation", id),
			zap.String("type", relType),
		)
		return
	}
	r.relations[id] = &Relation{ID: id, Tags: tags, Members: members}
}

// FlushPOIs drains any buffered POI documents. Call once after the stream
// is exhausted.
func (r *Resolver) FlushPOIs(ctx context.Context) {
	r.flushPOIs(ctx)
}

func (r *Resolver) flushPOIs(ctx context.Context) {
	if len(r.pending) == 0 {
		return
	}
	if _, err := r.sink.BulkUpsertPOIs(ctx, r.pending); err != nil {
		r.log.Error("poi batch dropped",
			zap.Int("docs", len(r.pending)),
			zap.Error(err),
		)
	}
	r.pending = nil
}

// Stats reports cache sizes for end-of-stream logging.
type Stats struct {
	Coords    int
	Nodes     int
	Ways      int
	Relations int
}

// Stats returns the current cache sizes.
func (r *Resolver) Stats() Stats {
	return Stats{
		Coords:    len(r.coords),
		Nodes:     len(r.nodes),
		Ways:      len(r.ways),
		Relations: len(r.relations),
	}
}

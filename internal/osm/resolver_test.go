package osm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

// captureSink records every POI batch it receives.
type captureSink struct {
	batches [][]store.POIDoc
	err     error
}

func (s *captureSink) BulkUpsertPOIs(_ context.Context, docs []store.POIDoc) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	batch := make([]store.POIDoc, len(docs))
	copy(batch, docs)
	s.batches = append(s.batches, batch)
	return int64(len(docs)), nil
}

func richTags() Tags {
	return Tags{"amenity": "cafe", "name": "Kahvila", "cuisine": "coffee_shop"}
}

func TestResolver_AddNode_CachesAddressNodes(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddNode(context.Background(), 1, Tags{tagHouseNumber: "5", tagStreet: "Esimerkkikatu"}, 24.9, 60.2)
	r.AddNode(context.Background(), 2, Tags{"highway": "crossing"}, 24.8, 60.1)

	assert.Contains(t, r.nodes, int64(1))
	assert.NotContains(t, r.nodes, int64(2))
}

func TestResolver_AddNode_SkipsAnimalSpottings(t *testing.T) {
	sink := &captureSink{}
	r := NewResolver(sink, 1)

	tags := richTags()
	tags["animal_spotting"] = "moose"
	r.AddNode(context.Background(), 1, tags, 24.9, 60.2)
	r.FlushPOIs(context.Background())

	assert.Empty(t, sink.batches)
	assert.Empty(t, r.nodes)
}

func TestResolver_AddNode_SkipsStubPOIs(t *testing.T) {
	sink := &captureSink{}
	r := NewResolver(sink, 1)
	ctx := context.Background()

	// Two tags or fewer: linked from elsewhere, useless as a POI.
	r.AddNode(ctx, 1, Tags{"name": "A", "highway": "bus_stop"}, 24.9, 60.2)
	// Editor provenance marker plus two tags is still a stub.
	r.AddNode(ctx, 2, Tags{"created_by": "JOSM", "name": "B", "highway": "bus_stop"}, 24.9, 60.2)
	// Three real tags qualify.
	r.AddNode(ctx, 3, richTags(), 24.9, 60.2)
	r.FlushPOIs(ctx)

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, int64(3), sink.batches[0][0].OSMID)
}

func TestResolver_AddNode_FlushesFullBatches(t *testing.T) {
	sink := &captureSink{}
	r := NewResolver(sink, 2)
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		r.AddNode(ctx, id, richTags(), 24.9, 60.2)
	}
	assert.Len(t, sink.batches, 2)

	r.FlushPOIs(ctx)
	require.Len(t, sink.batches, 3)
	assert.Len(t, sink.batches[2], 1)
}

func TestResolver_FlushPOIs_DropsFailedBatch(t *testing.T) {
	sink := &captureSink{err: assert.AnError}
	r := NewResolver(sink, 10)
	ctx := context.Background()

	r.AddNode(ctx, 1, richTags(), 24.9, 60.2)
	r.FlushPOIs(ctx)

	// The batch is gone, not retried.
	assert.Empty(t, r.pending)
}

func TestResolver_AddWay_RequiresAddressTags(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddWay(1, Tags{tagHouseNumber: "5"}, []int64{10, 11})
	r.AddWay(2, Tags{"building": "yes"}, []int64{12, 13})

	assert.Contains(t, r.ways, int64(1))
	assert.NotContains(t, r.ways, int64(2))
}

func TestResolver_AddRelation_KeepsNamedStreets(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddRelation(1, Tags{tagType: "associatedStreet", tagName: "Esimerkkikatu"}, nil)
	r.AddRelation(2, Tags{tagType: "street", tagName: "Rajakatu"}, nil)
	r.AddRelation(3, Tags{tagType: "route", tagName: "55"}, nil)
	r.AddRelation(4, Tags{tagType: "street"}, nil)

	assert.Contains(t, r.relations, int64(1))
	assert.Contains(t, r.relations, int64(2))
	assert.NotContains(t, r.relations, int64(3))
	assert.NotContains(t, r.relations, int64(4))
}

func TestResolver_Stats(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddCoord(1, 24.9, 60.2)
	r.AddCoord(2, 24.8, 60.1)
	r.AddNode(context.Background(), 1, Tags{tagHouseNumber: "5"}, 24.9, 60.2)
	r.AddWay(10, Tags{tagStreet: "Esimerkkikatu"}, []int64{1, 2})
	r.AddRelation(20, Tags{tagType: "street", tagName: "Esimerkkikatu"}, nil)

	assert.Equal(t, Stats{Coords: 2, Nodes: 1, Ways: 1, Relations: 1}, r.Stats())
}

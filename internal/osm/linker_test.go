package osm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkStreets_LinksMembers(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddNode(context.Background(), 1, Tags{tagHouseNumber: "5"}, 24.9, 60.2)
	r.AddWay(10, Tags{tagHouseNumber: "7"}, []int64{1})
	r.AddRelation(100, Tags{tagType: "associatedStreet", tagName: "Esimerkkikatu"}, []Member{
		{ID: 1, Kind: KindNode, Role: "house"},
		{ID: 10, Kind: KindWay, Role: "house"},
	})

	LinkStreets(r)

	assert.Equal(t, int64(100), r.nodes[1].AssociatedStreet)
	assert.Equal(t, int64(100), r.ways[10].AssociatedStreet)
}

func TestLinkStreets_IgnoresUnknownMembers(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddRelation(100, Tags{tagType: "street", tagName: "Esimerkkikatu"}, []Member{
		{ID: 99, Kind: KindNode},
		{ID: 98, Kind: KindWay},
	})

	LinkStreets(r)

	assert.Empty(t, r.nodes)
	assert.Empty(t, r.ways)
}

func TestLinkStreets_KeepsFirstRelationOnConflict(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddWay(10, Tags{tagHouseNumber: "7"}, nil)
	r.ways[10].AssociatedStreet = 50

	r.AddRelation(100, Tags{tagType: "associatedStreet", tagName: "Esimerkkikatu"}, []Member{
		{ID: 10, Kind: KindWay},
	})

	LinkStreets(r)

	assert.Equal(t, int64(50), r.ways[10].AssociatedStreet)
}

func TestLinkStreets_SameRelationTwiceIsNotAConflict(t *testing.T) {
	r := NewResolver(nil, 0)

	r.AddWay(10, Tags{tagHouseNumber: "7"}, nil)
	r.AddRelation(100, Tags{tagType: "associatedStreet", tagName: "Esimerkkikatu"}, []Member{
		{ID: 10, Kind: KindWay, Role: "house"},
		{ID: 10, Kind: KindWay, Role: "street"},
	})

	LinkStreets(r)

	assert.Equal(t, int64(100), r.ways[10].AssociatedStreet)
}

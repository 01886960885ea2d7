// Package osm reconstructs postal addresses and points of interest from a raw
// OpenStreetMap extract. The pipeline runs in strict passes: stream the
// extract into per-run caches, link street relations onto their members,
// assemble candidate addresses, then merge duplicates into a final set.
package osm

import (
	"strings"

	"github.com/paulmach/orb"
)

const (
	addrPrefix = "addr:"

	tagHouseNumber = "addr:housenumber"
	tagStreet      = "addr:street"
	tagUnit        = "addr:unit"
	tagStaircase   = "addr:staircase"
	tagEntrance    = "entrance"
	tagName        = "name"
	tagType        = "type"
)

// Tags is the key/value tag mapping attached to an OSM element.
type Tags map[string]string

// HasAddr reports whether any tag key is in the address namespace.
func (t Tags) HasAddr() bool {
	for k := range t {
		if strings.HasPrefix(k, addrPrefix) {
			return true
		}
	}
	return false
}

// Node is a cached address-relevant node. AssociatedStreet holds the ID of
// the street relation that names this node, 0 when none has been linked.
type Node struct {
	ID               int64
	Tags             Tags
	Location         orb.Point
	AssociatedStreet int64
}

// Way is a cached address-relevant way. NodeIDs preserves member order,
// which defines the outline polygon.
type Way struct {
	ID               int64
	Tags             Tags
	NodeIDs          []int64
	AssociatedStreet int64
}

// MemberKind identifies the kind of a relation member.
type MemberKind int

const (
	KindNode MemberKind = iota
	KindWay
)

// Member is one entry of a relation's ordered member list.
type Member struct {
	ID   int64
	Kind MemberKind
	Role string
}

// Relation is a cached street-type relation. Only relations tagged as
// street or associatedStreet with a name are retained.
type Relation struct {
	ID      int64
	Tags    Tags
	Members []Member
}

// Name returns the relation's street name.
func (r *Relation) Name() string {
	return r.Tags[tagName]
}

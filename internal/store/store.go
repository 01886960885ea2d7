// Package store persists geocoding documents to Postgres or SQLite.
package store

import (
	"context"

	"github.com/paulmach/orb"
)

// POIDoc is one point of interest lifted from the extract stream.
type POIDoc struct {
	OSMID int64
	Tags  map[string]string
	Lon   float64
	Lat   float64
}

// OSMAddressDoc is one merged address assembled from extract elements.
// Municipality is empty when the location fell outside every known boundary.
type OSMAddressDoc struct {
	Municipality string
	Street       string
	Number       string
	Unit         string
	Lon          float64
	Lat          float64
	MainEntrance bool
}

// RegistryAddressDoc is one address row from a municipal registry extract.
type RegistryAddressDoc struct {
	Street         string
	StreetSv       string
	Municipality   string
	MunicipalitySv string
	Unit           string
	Number         int
	Number2        int
	LeftSide       bool
	Lon            float64
	Lat            float64
}

// SegmentDoc is one road centerline with its address ranges. A zero
// Min/Max pair marks that side as carrying no addresses.
type SegmentDoc struct {
	SourceFile string
	Street     string
	AltStreet  string
	MinLeft    int
	MaxLeft    int
	MinRight   int
	MaxRight   int
	Line       orb.LineString
}

// Store is the persistence interface shared by the Postgres and SQLite
// backends.
type Store interface {
	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	BulkUpsertPOIs(ctx context.Context, docs []POIDoc) (int64, error)
	BulkUpsertOSMAddresses(ctx context.Context, docs []OSMAddressDoc) (int64, error)
	BulkUpsertAddresses(ctx context.Context, docs []RegistryAddressDoc) (int64, error)

	// ReplaceSegments swaps out all segments previously loaded from
	// sourceFile in one transaction.
	ReplaceSegments(ctx context.Context, sourceFile string, segs []SegmentDoc) error
	// Segments returns every stored road segment.
	Segments(ctx context.Context) ([]SegmentDoc, error)

	Close() error
}

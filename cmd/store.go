package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/HSLdevcom/digitransit-geocoder/internal/interp"
	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

// openStore opens the configured persistence backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "geocoder.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// segmentsFromDocs converts stored segments for the interpolation
// geocoder, numbering them in storage order.
func segmentsFromDocs(docs []store.SegmentDoc) []interp.Segment {
	segs := make([]interp.Segment, 0, len(docs))
	for i, d := range docs {
		segs = append(segs, interp.Segment{
			ID:        int64(i),
			Street:    d.Street,
			AltStreet: d.AltStreet,
			Left:      interp.Range{Min: d.MinLeft, Max: d.MaxLeft},
			Right:     interp.Range{Min: d.MinRight, Max: d.MaxRight},
			Line:      d.Line,
		})
	}
	return segs
}

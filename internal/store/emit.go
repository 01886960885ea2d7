package store

import (
	"context"

	"go.uber.org/zap"
)

// emitChunks feeds docs to upsert in fixed-size chunks. A failed chunk is
// logged and dropped so one bad batch does not sink the whole run. Returns
// the number of rows the backend reported written.
func emitChunks[T any](ctx context.Context, docs []T, size int, kind string,
	upsert func(context.Context, []T) (int64, error),
) int64 {
	if size <= 0 {
		size = 256
	}
	log := zap.L().With(zap.String("component", "store.emit"))

	var written int64
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		n, err := upsert(ctx, docs[start:end])
		if err != nil {
			log.Error("batch dropped",
				zap.String("kind", kind),
				zap.Int("docs", end-start),
				zap.Error(err),
			)
			continue
		}
		written += n
	}
	return written
}

// EmitOSMAddresses writes assembled addresses in chunks.
func EmitOSMAddresses(ctx context.Context, s Store, docs []OSMAddressDoc, size int) int64 {
	return emitChunks(ctx, docs, size, "osm_address", s.BulkUpsertOSMAddresses)
}

// EmitAddresses writes registry addresses in chunks.
func EmitAddresses(ctx context.Context, s Store, docs []RegistryAddressDoc, size int) int64 {
	return emitChunks(ctx, docs, size, "address", s.BulkUpsertAddresses)
}

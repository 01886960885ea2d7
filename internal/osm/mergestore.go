package osm

import (
	"sort"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Locator answers point-to-municipality queries.
type Locator interface {
	Locate(p orb.Point) (string, bool)
}

// AddressKey identifies an address. Municipality is empty when the location
// fell outside every known boundary; Unit is empty when the address has no
// unit or staircase letter.
type AddressKey struct {
	Municipality string
	Street       string
	Number       string
	Unit         string
}

// Candidate is one proposed address record. Municipality may be left empty
// to have the store resolve it from the location.
type Candidate struct {
	Municipality string
	Street       string
	Number       string
	Unit         string
	Location     orb.Point
	MainEntrance bool
}

// AddressRecord is a merged, final address.
type AddressRecord struct {
	AddressKey
	Location     orb.Point
	MainEntrance bool
}

// MergeStore deduplicates candidate addresses. The merge policy is
// first-writer-wins, except that a main-entrance candidate replaces an
// earlier non-main record for the same key regardless of arrival order.
type MergeStore struct {
	locator Locator
	records map[AddressKey]AddressRecord
	log     *zap.Logger
}

// NewMergeStore creates an empty store. locator may be nil, leaving every
// municipality unresolved.
func NewMergeStore(locator Locator) *MergeStore {
	return &MergeStore{
		locator: locator,
		records: make(map[AddressKey]AddressRecord),
		log:     zap.L().With(zap.String("component", "osm.mergestore")),
	}
}

// Add submits a candidate, resolving its municipality first when unknown.
func (s *MergeStore) Add(c Candidate) {
	muni := c.Municipality
	if muni == "" && s.locator != nil {
		if name, ok := s.locator.Locate(c.Location); ok {
			muni = name
		}
	}

	key := AddressKey{Municipality: muni, Street: c.Street, Number: c.Number, Unit: c.Unit}
	existing, ok := s.records[key]
	if !ok {
		s.records[key] = AddressRecord{AddressKey: key, Location: c.Location, MainEntrance: c.MainEntrance}
		return
	}

	if c.MainEntrance && !existing.MainEntrance {
		s.log.Info("overriding existing address with main entrance",
			zap.String("street", key.Street),
			zap.String("number", key.Number),
			zap.Float64("lon", c.Location[0]),
			zap.Float64("lat", c.Location[1]),
		)
		s.records[key] = AddressRecord{AddressKey: key, Location: c.Location, MainEntrance: true}
		return
	}

	// Probably multiple entrances for the same staircase; keep the first.
	s.log.Info("duplicate address, using only the first one",
		zap.String("street", key.Street),
		zap.String("number", key.Number),
		zap.Float64("lon", c.Location[0]),
		zap.Float64("lat", c.Location[1]),
	)
}

// Len returns the number of merged records.
func (s *MergeStore) Len() int {
	return len(s.records)
}

// Records returns the final address set, ordered by key for deterministic
// emission.
func (s *MergeStore) Records() []AddressRecord {
	out := make([]AddressRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].AddressKey, out[j].AddressKey
		if a.Municipality != b.Municipality {
			return a.Municipality < b.Municipality
		}
		if a.Street != b.Street {
			return a.Street < b.Street
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Unit < b.Unit
	})
	return out
}

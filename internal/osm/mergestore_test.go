package osm

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedLocator maps every point to one municipality.
type fixedLocator struct {
	name string
}

func (l fixedLocator) Locate(_ orb.Point) (string, bool) {
	if l.name == "" {
		return "", false
	}
	return l.name, true
}

func TestMergeStore_ResolvesMunicipality(t *testing.T) {
	s := NewMergeStore(fixedLocator{name: "Helsinki"})

	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.9, 60.2}})

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Helsinki", recs[0].Municipality)
}

func TestMergeStore_UnknownMunicipalityStaysEmpty(t *testing.T) {
	s := NewMergeStore(fixedLocator{})

	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.9, 60.2}})

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0].Municipality)
}

func TestMergeStore_FirstWriterWins(t *testing.T) {
	s := NewMergeStore(nil)

	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.9, 60.2}})
	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.95, 60.25}})

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, orb.Point{24.9, 60.2}, recs[0].Location)
}

func TestMergeStore_MainEntranceOverridesEarlierRecord(t *testing.T) {
	s := NewMergeStore(nil)

	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.9, 60.2}})
	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.95, 60.25}, MainEntrance: true})

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, orb.Point{24.95, 60.25}, recs[0].Location)
	assert.True(t, recs[0].MainEntrance)
}

func TestMergeStore_MainEntranceFirstStays(t *testing.T) {
	s := NewMergeStore(nil)

	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.9, 60.2}, MainEntrance: true})
	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.95, 60.25}, MainEntrance: true})
	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Location: orb.Point{24.97, 60.27}})

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, orb.Point{24.9, 60.2}, recs[0].Location)
}

func TestMergeStore_DistinctUnitsStaySeparate(t *testing.T) {
	s := NewMergeStore(nil)

	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Unit: "a", Location: orb.Point{24.9, 60.2}})
	s.Add(Candidate{Street: "Esimerkkikatu", Number: "5", Unit: "b", Location: orb.Point{24.91, 60.21}})
	s.Add(Candidate{Street: "Esimerkkikatu", Number: "7", Location: orb.Point{24.92, 60.22}})

	assert.Equal(t, 3, s.Len())
}

func TestMergeStore_RecordsAreSorted(t *testing.T) {
	s := NewMergeStore(nil)

	s.Add(Candidate{Municipality: "Vantaa", Street: "B", Number: "1", Location: orb.Point{25.0, 60.3}})
	s.Add(Candidate{Municipality: "Helsinki", Street: "B", Number: "2", Location: orb.Point{24.9, 60.2}})
	s.Add(Candidate{Municipality: "Helsinki", Street: "A", Number: "1", Location: orb.Point{24.8, 60.1}})

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "A", recs[0].Street)
	assert.Equal(t, "B", recs[1].Street)
	assert.Equal(t, "Vantaa", recs[2].Municipality)
}

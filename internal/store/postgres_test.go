package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

// expectBulkUpsert sets up the temp table + COPY + INSERT flow for one batch.
func expectBulkUpsert(mock pgxmock.PgxPoolIface, tempTable string, cols []string, rows int64) {
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{tempTable}, cols).
		WillReturnResult(rows)
	mock.ExpectExec(`INSERT INTO`).
		WillReturnResult(pgxmock.NewResult("INSERT", rows))
	mock.ExpectCommit()
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS geocoder`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkUpsertPOIs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	expectBulkUpsert(mock, "_tmp_upsert_geocoder_poi",
		[]string{"osm_id", "tags", "lon", "lat"}, 2)

	n, err := s.BulkUpsertPOIs(context.Background(), []POIDoc{
		{OSMID: 1, Tags: map[string]string{"amenity": "cafe", "name": "Kulma"}, Lon: 24.9, Lat: 60.2},
		{OSMID: 2, Tags: map[string]string{"shop": "kiosk"}, Lon: 24.8, Lat: 60.1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkUpsertOSMAddresses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	expectBulkUpsert(mock, "_tmp_upsert_geocoder_osm_address",
		[]string{"municipality", "street", "number", "unit", "lon", "lat", "main_entrance"}, 1)

	n, err := s.BulkUpsertOSMAddresses(context.Background(), []OSMAddressDoc{
		{Municipality: "Helsinki", Street: "Esimerkkikatu", Number: "5", Unit: "b", Lon: 24.9, Lat: 60.2, MainEntrance: true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkUpsertAddresses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	expectBulkUpsert(mock, "_tmp_upsert_geocoder_address",
		[]string{"municipality", "municipality_sv", "street", "street_sv", "number", "number2", "unit", "left_side", "lon", "lat"}, 1)

	n, err := s.BulkUpsertAddresses(context.Background(), []RegistryAddressDoc{
		{Municipality: "Helsinki", MunicipalitySv: "Helsingfors", Street: "Esimerkkikatu", Number: 4, Number2: 4, LeftSide: true, Lon: 24.9, Lat: 60.2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceSegments(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM geocoder.road_segment WHERE source_file = \$1`).
		WithArgs("edges.shp").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`INSERT INTO geocoder.road_segment`).
		WithArgs("edges.shp", "Esimerkkikatu", "", 2, 10, 1, 9,
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.ReplaceSegments(context.Background(), "edges.shp", []SegmentDoc{
		{
			SourceFile: "edges.shp",
			Street:     "Esimerkkikatu",
			MinLeft:    2, MaxLeft: 10,
			MinRight: 1, MaxRight: 9,
			Line: orb.LineString{{24.90, 60.20}, {24.91, 60.21}},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceSegments_DeleteFails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM geocoder.road_segment`).
		WithArgs("edges.shp").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.ReplaceSegments(context.Background(), "edges.shp", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete segments")
}

func TestPostgresStore_Segments(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	line := []byte(`{"type":"LineString","coordinates":[[24.9,60.2],[24.91,60.21]]}`)
	rows := pgxmock.NewRows([]string{
		"source_file", "street", "alt_street",
		"min_left", "max_left", "min_right", "max_right", "line",
	}).AddRow("edges.shp", "Esimerkkikatu", "", 2, 10, 1, 9, line)

	mock.ExpectQuery(`SELECT source_file, street, alt_street`).
		WillReturnRows(rows)

	segs, err := s.Segments(context.Background())
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "Esimerkkikatu", segs[0].Street)
	assert.Equal(t, orb.LineString{{24.9, 60.2}, {24.91, 60.21}}, segs[0].Line)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeLine_WrongType(t *testing.T) {
	_, err := decodeLine([]byte(`{"type":"Point","coordinates":[24.9,60.2]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want LineString")
}

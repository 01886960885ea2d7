package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/geojson"
	"github.com/rotisserie/eris"

	"github.com/HSLdevcom/digitransit-geocoder/internal/db"
)

// PostgresStore implements Store using pgxpool and PostGIS.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE SCHEMA IF NOT EXISTS geocoder;

CREATE TABLE IF NOT EXISTS geocoder.poi (
	osm_id BIGINT PRIMARY KEY,
	tags   JSONB NOT NULL,
	lon    DOUBLE PRECISION NOT NULL,
	lat    DOUBLE PRECISION NOT NULL,
	geom   geometry(Point, 4326) GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(lon, lat), 4326)) STORED
);

CREATE TABLE IF NOT EXISTS geocoder.osm_address (
	municipality  TEXT NOT NULL DEFAULT '',
	street        TEXT NOT NULL,
	number        TEXT NOT NULL,
	unit          TEXT NOT NULL DEFAULT '',
	lon           DOUBLE PRECISION NOT NULL,
	lat           DOUBLE PRECISION NOT NULL,
	main_entrance BOOLEAN NOT NULL DEFAULT FALSE,
	geom          geometry(Point, 4326) GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(lon, lat), 4326)) STORED,
	PRIMARY KEY (municipality, street, number, unit)
);

CREATE TABLE IF NOT EXISTS geocoder.address (
	municipality    TEXT NOT NULL,
	municipality_sv TEXT NOT NULL DEFAULT '',
	street          TEXT NOT NULL,
	street_sv       TEXT NOT NULL DEFAULT '',
	number          INTEGER NOT NULL,
	number2         INTEGER NOT NULL,
	unit            TEXT NOT NULL DEFAULT '',
	left_side       BOOLEAN NOT NULL,
	lon             DOUBLE PRECISION NOT NULL,
	lat             DOUBLE PRECISION NOT NULL,
	geom            geometry(Point, 4326) GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(lon, lat), 4326)) STORED,
	PRIMARY KEY (municipality, street, number, unit)
);

CREATE TABLE IF NOT EXISTS geocoder.road_segment (
	id          BIGSERIAL PRIMARY KEY,
	source_file TEXT NOT NULL,
	street      TEXT NOT NULL,
	alt_street  TEXT NOT NULL DEFAULT '',
	min_left    INTEGER NOT NULL DEFAULT 0,
	max_left    INTEGER NOT NULL DEFAULT 0,
	min_right   INTEGER NOT NULL DEFAULT 0,
	max_right   INTEGER NOT NULL DEFAULT 0,
	line        JSONB NOT NULL,
	geom        geometry(LineString, 4326)
);

CREATE INDEX IF NOT EXISTS idx_poi_geom ON geocoder.poi USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_osm_address_geom ON geocoder.osm_address USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_address_geom ON geocoder.address USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_road_segment_source ON geocoder.road_segment(source_file);
CREATE INDEX IF NOT EXISTS idx_road_segment_street ON geocoder.road_segment(street);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) BulkUpsertPOIs(ctx context.Context, docs []POIDoc) (int64, error) {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		tags, err := json.Marshal(d.Tags)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal tags for node %d", d.OSMID)
		}
		rows = append(rows, []any{d.OSMID, tags, d.Lon, d.Lat})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "geocoder.poi",
		Columns:      []string{"osm_id", "tags", "lon", "lat"},
		ConflictKeys: []string{"osm_id"},
	}, rows)
}

func (s *PostgresStore) BulkUpsertOSMAddresses(ctx context.Context, docs []OSMAddressDoc) (int64, error) {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []any{d.Municipality, d.Street, d.Number, d.Unit, d.Lon, d.Lat, d.MainEntrance})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "geocoder.osm_address",
		Columns:      []string{"municipality", "street", "number", "unit", "lon", "lat", "main_entrance"},
		ConflictKeys: []string{"municipality", "street", "number", "unit"},
	}, rows)
}

func (s *PostgresStore) BulkUpsertAddresses(ctx context.Context, docs []RegistryAddressDoc) (int64, error) {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []any{d.Municipality, d.MunicipalitySv, d.Street, d.StreetSv, d.Number, d.Number2, d.Unit, d.LeftSide, d.Lon, d.Lat})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "geocoder.address",
		Columns:      []string{"municipality", "municipality_sv", "street", "street_sv", "number", "number2", "unit", "left_side", "lon", "lat"},
		ConflictKeys: []string{"municipality", "street", "number", "unit"},
	}, rows)
}

func (s *PostgresStore) ReplaceSegments(ctx context.Context, sourceFile string, segs []SegmentDoc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM geocoder.road_segment WHERE source_file = $1`,
		sourceFile,
	); err != nil {
		return eris.Wrapf(err, "postgres: delete segments for %s", sourceFile)
	}

	for _, seg := range segs {
		line, err := json.Marshal(geojson.NewGeometry(seg.Line))
		if err != nil {
			return eris.Wrap(err, "postgres: marshal segment line")
		}
		ewkbData, err := lineToEWKB(seg.Line)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO geocoder.road_segment
				(source_file, street, alt_street, min_left, max_left, min_right, max_right, line, geom)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, ST_GeomFromEWKB($9))`,
			sourceFile, seg.Street, seg.AltStreet,
			seg.MinLeft, seg.MaxLeft, seg.MinRight, seg.MaxRight,
			line, ewkbData,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert segment for %s", sourceFile)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit tx")
	}
	return nil
}

func (s *PostgresStore) Segments(ctx context.Context) ([]SegmentDoc, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_file, street, alt_street, min_left, max_left, min_right, max_right, line
		 FROM geocoder.road_segment ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query segments")
	}
	defer rows.Close()

	var segs []SegmentDoc
	for rows.Next() {
		var seg SegmentDoc
		var line []byte
		if err := rows.Scan(&seg.SourceFile, &seg.Street, &seg.AltStreet,
			&seg.MinLeft, &seg.MaxLeft, &seg.MinRight, &seg.MaxRight, &line); err != nil {
			return nil, eris.Wrap(err, "postgres: scan segment")
		}
		seg.Line, err = decodeLine(line)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate segments")
	}
	return segs, nil
}

// decodeLine parses a GeoJSON geometry into a line string.
func decodeLine(data []byte) (orb.LineString, error) {
	var g geojson.Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, eris.Wrap(err, "store: decode segment line")
	}
	line, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, eris.Errorf("store: segment line is %s, want LineString", g.Type)
	}
	return line, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/paulmach/orb/encoding/geojson"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. Geometry is kept
// as GeoJSON text since there is no spatial extension to lean on.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS poi (
	osm_id INTEGER PRIMARY KEY,
	tags   TEXT NOT NULL,
	lon    REAL NOT NULL,
	lat    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS osm_address (
	municipality  TEXT NOT NULL DEFAULT '',
	street        TEXT NOT NULL,
	number        TEXT NOT NULL,
	unit          TEXT NOT NULL DEFAULT '',
	lon           REAL NOT NULL,
	lat           REAL NOT NULL,
	main_entrance INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (municipality, street, number, unit)
);

CREATE TABLE IF NOT EXISTS address (
	municipality    TEXT NOT NULL,
	municipality_sv TEXT NOT NULL DEFAULT '',
	street          TEXT NOT NULL,
	street_sv       TEXT NOT NULL DEFAULT '',
	number          INTEGER NOT NULL,
	number2         INTEGER NOT NULL,
	unit            TEXT NOT NULL DEFAULT '',
	left_side       INTEGER NOT NULL,
	lon             REAL NOT NULL,
	lat             REAL NOT NULL,
	PRIMARY KEY (municipality, street, number, unit)
);

CREATE TABLE IF NOT EXISTS road_segment (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL,
	street      TEXT NOT NULL,
	alt_street  TEXT NOT NULL DEFAULT '',
	min_left    INTEGER NOT NULL DEFAULT 0,
	max_left    INTEGER NOT NULL DEFAULT 0,
	min_right   INTEGER NOT NULL DEFAULT 0,
	max_right   INTEGER NOT NULL DEFAULT 0,
	line        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_road_segment_source ON road_segment(source_file);
CREATE INDEX IF NOT EXISTS idx_road_segment_street ON road_segment(street);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) BulkUpsertPOIs(ctx context.Context, docs []POIDoc) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO poi (osm_id, tags, lon, lat) VALUES (?, ?, ?, ?)
		 ON CONFLICT (osm_id) DO UPDATE SET tags = excluded.tags, lon = excluded.lon, lat = excluded.lat`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare poi upsert")
	}
	defer stmt.Close()

	var n int64
	for _, d := range docs {
		tags, err := json.Marshal(d.Tags)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal tags for node %d", d.OSMID)
		}
		if _, err := stmt.ExecContext(ctx, d.OSMID, string(tags), d.Lon, d.Lat); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert poi %d", d.OSMID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

func (s *SQLiteStore) BulkUpsertOSMAddresses(ctx context.Context, docs []OSMAddressDoc) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO osm_address (municipality, street, number, unit, lon, lat, main_entrance)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (municipality, street, number, unit) DO UPDATE SET
			lon = excluded.lon, lat = excluded.lat, main_entrance = excluded.main_entrance`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare address upsert")
	}
	defer stmt.Close()

	var n int64
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			d.Municipality, d.Street, d.Number, d.Unit, d.Lon, d.Lat, d.MainEntrance,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert address %s %s", d.Street, d.Number)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

func (s *SQLiteStore) BulkUpsertAddresses(ctx context.Context, docs []RegistryAddressDoc) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO address
			(municipality, municipality_sv, street, street_sv, number, number2, unit, left_side, lon, lat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (municipality, street, number, unit) DO UPDATE SET
			municipality_sv = excluded.municipality_sv, street_sv = excluded.street_sv,
			number2 = excluded.number2, left_side = excluded.left_side,
			lon = excluded.lon, lat = excluded.lat`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare registry upsert")
	}
	defer stmt.Close()

	var n int64
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			d.Municipality, d.MunicipalitySv, d.Street, d.StreetSv,
			d.Number, d.Number2, d.Unit, d.LeftSide, d.Lon, d.Lat,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert registry address %s %d", d.Street, d.Number)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

func (s *SQLiteStore) ReplaceSegments(ctx context.Context, sourceFile string, segs []SegmentDoc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM road_segment WHERE source_file = ?`, sourceFile,
	); err != nil {
		return eris.Wrapf(err, "sqlite: delete segments for %s", sourceFile)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO road_segment
			(source_file, street, alt_street, min_left, max_left, min_right, max_right, line)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare segment insert")
	}
	defer stmt.Close()

	for _, seg := range segs {
		line, err := json.Marshal(geojson.NewGeometry(seg.Line))
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal segment line")
		}
		if _, err := stmt.ExecContext(ctx,
			sourceFile, seg.Street, seg.AltStreet,
			seg.MinLeft, seg.MaxLeft, seg.MinRight, seg.MaxRight, string(line),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert segment for %s", sourceFile)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit tx")
	}
	return nil
}

func (s *SQLiteStore) Segments(ctx context.Context) ([]SegmentDoc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_file, street, alt_street, min_left, max_left, min_right, max_right, line
		 FROM road_segment ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query segments")
	}
	defer rows.Close()

	var segs []SegmentDoc
	for rows.Next() {
		var seg SegmentDoc
		var line string
		if err := rows.Scan(&seg.SourceFile, &seg.Street, &seg.AltStreet,
			&seg.MinLeft, &seg.MaxLeft, &seg.MinRight, &seg.MaxRight, &line); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan segment")
		}
		seg.Line, err = decodeLine([]byte(line))
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate segments")
	}
	return segs, nil
}

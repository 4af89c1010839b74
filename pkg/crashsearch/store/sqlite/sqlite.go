// Package sqlite implements store.Store on SQLite via modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite collision database with WAL mode
// enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL lets the dashboard read while a loader writes
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS collisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	crash_date TEXT NOT NULL,
	crash_year INTEGER NOT NULL,
	crash_time TEXT NOT NULL DEFAULT '',
	borough TEXT NOT NULL DEFAULT '',
	latitude REAL NOT NULL DEFAULT 0,
	longitude REAL NOT NULL DEFAULT 0,
	has_location INTEGER NOT NULL DEFAULT 0,
	person_type TEXT NOT NULL DEFAULT '',
	person_injury TEXT NOT NULL DEFAULT '',
	vehicle_type TEXT NOT NULL DEFAULT '',
	contributing_factor TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_collisions_borough ON collisions(borough);
CREATE INDEX IF NOT EXISTS idx_collisions_year ON collisions(crash_year);
CREATE INDEX IF NOT EXISTS idx_collisions_person_type ON collisions(person_type);
CREATE INDEX IF NOT EXISTS idx_collisions_person_injury ON collisions(person_injury);
CREATE INDEX IF NOT EXISTS idx_collisions_vehicle_type ON collisions(vehicle_type);
CREATE INDEX IF NOT EXISTS idx_collisions_factor ON collisions(contributing_factor);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// columns maps filter categories to their table columns. Year is handled
// separately via crash_year.
var columns = map[vocab.Category]string{
	vocab.Borough:            "borough",
	vocab.VehicleType:        "vehicle_type",
	vocab.ContributingFactor: "contributing_factor",
	vocab.InjuryType:         "person_injury",
	vocab.PersonType:         "person_type",
}

// whereClause renders a filter Set as "WHERE col IN (?, ...) AND ..." with
// its argument list. An empty Set yields an empty clause.
func whereClause(set filter.Set) (string, []any) {
	var conds []string
	var args []any

	for _, cat := range set.Categories() {
		values := set.Values(cat)

		if cat == vocab.Year {
			placeholders := make([]string, 0, len(values))
			for _, v := range values {
				year, err := strconv.Atoi(v)
				if err != nil {
					continue
				}
				placeholders = append(placeholders, "?")
				args = append(args, year)
			}
			if len(placeholders) > 0 {
				conds = append(conds, fmt.Sprintf("crash_year IN (%s)", strings.Join(placeholders, ", ")))
			}
			continue
		}

		col := columns[cat]
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			args = append(args, v)
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *sqliteStore) InsertRows(ctx context.Context, rows []store.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collisions (
			crash_date, crash_year, crash_time, borough,
			latitude, longitude, has_location,
			person_type, person_injury, vehicle_type, contributing_factor
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		hasLoc := 0
		if r.HasLocation {
			hasLoc = 1
		}
		_, err := stmt.ExecContext(ctx,
			r.CrashDate.Format("2006-01-02"), r.CrashDate.Year(), r.CrashTime, r.Borough,
			r.Latitude, r.Longitude, hasLoc,
			r.PersonType, r.PersonInjury, r.VehicleType, r.ContributingFactor,
		)
		if err != nil {
			return fmt.Errorf("insert collision row: %w", err)
		}
	}

	return tx.Commit()
}

func (s *sqliteStore) CountRows(ctx context.Context, set filter.Set) (int64, error) {
	where, args := whereClause(set)

	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collisions"+where, args...).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *sqliteStore) SelectRows(ctx context.Context, set filter.Set, limit int) ([]store.Row, error) {
	where, args := whereClause(set)

	query := `
		SELECT id, crash_date, crash_time, borough,
		       latitude, longitude, has_location,
		       person_type, person_injury, vehicle_type, contributing_factor
		FROM collisions` + where + " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var r store.Row
		var dateStr string
		var hasLoc int
		err := rows.Scan(&r.ID, &dateStr, &r.CrashTime, &r.Borough,
			&r.Latitude, &r.Longitude, &hasLoc,
			&r.PersonType, &r.PersonInjury, &r.VehicleType, &r.ContributingFactor)
		if err != nil {
			return nil, err
		}
		r.CrashDate, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("scan crash date %q: %w", dateStr, err)
		}
		r.HasLocation = hasLoc != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DistinctValues(ctx context.Context, cat vocab.Category, limit int) ([]string, error) {
	var query string
	if cat == vocab.Year {
		query = `SELECT CAST(crash_year AS TEXT) AS v, COUNT(*) AS n
			FROM collisions GROUP BY crash_year ORDER BY n DESC, v ASC`
	} else {
		col, ok := columns[cat]
		if !ok {
			return nil, fmt.Errorf("distinct values: unknown category %q", cat)
		}
		query = fmt.Sprintf(`SELECT %s AS v, COUNT(*) AS n
			FROM collisions WHERE %s != '' GROUP BY %s ORDER BY n DESC, v ASC`, col, col, col)
	}

	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		var n int64
		if err := rows.Scan(&v, &n); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *sqliteStore) YearRange(ctx context.Context) (int, int, bool, error) {
	var min, max sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MIN(crash_year), MAX(crash_year) FROM collisions").Scan(&min, &max)
	if err != nil {
		return 0, 0, false, err
	}
	if !min.Valid || !max.Valid {
		return 0, 0, false, nil
	}
	return int(min.Int64), int(max.Int64), true, nil
}

// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package routing

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Memo remembers failed route attempts across runs. A route key
// (<cinema>_<stop>_<hour>) is impossible if no station of the cinema could
// be reached from the stop. A query key (<cinema>_<start>_<stop>_<hour>) is
// not fastest if its best candidate lost against another start station.
type Memo interface {
	Impossible(ctx context.Context, routeKey string) (bool, error)
	MarkImpossible(ctx context.Context, routeKey string) error
	NotFastest(ctx context.Context, queryKey string) (bool, error)
	MarkNotFastest(ctx context.Context, queryKey string) error
}

const invalidKeyChars = "<>:\"/\\|?* "

// SanitizeStopName removes characters that are invalid in file names
func SanitizeStopName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidKeyChars, r) {
			return -1
		}
		return r
	}, name)
}

// RouteKey identifies the transit route from a stop to a cinema at an hour
func RouteKey(cinema, stop string, hour int) string {
	return fmt.Sprintf("%s_%s_%d", cinema, stop, hour)
}

// QueryKey identifies a route key queried for a start point
func QueryKey(cinema, start, stop string, hour int) string {
	return fmt.Sprintf("%s_%s_%s_%d", cinema, start, stop, hour)
}

const (
	setImpossible = "impossible"
	setNotFastest = "not_fastest"
)

// SQLiteMemo is a Memo stored in a SQLite database
type SQLiteMemo struct {
	db *sql.DB
}

// OpenSQLiteMemo opens or creates the memo database at path
func OpenSQLiteMemo(path string) (*SQLiteMemo, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening memo %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS attempts (
		kind TEXT NOT NULL,
		key  TEXT NOT NULL,
		PRIMARY KEY (kind, key)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating memo schema: %w", err)
	}

	return &SQLiteMemo{db: db}, nil
}

func (m *SQLiteMemo) has(ctx context.Context, kind, key string) (bool, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts WHERE kind = ? AND key = ?`, kind, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("reading memo: %w", err)
	}
	return n > 0, nil
}

func (m *SQLiteMemo) add(ctx context.Context, kind, key string) error {
	_, err := m.db.ExecContext(ctx, `INSERT OR IGNORE INTO attempts (kind, key) VALUES (?, ?)`, kind, key)
	if err != nil {
		return fmt.Errorf("writing memo: %w", err)
	}
	return nil
}

// Impossible reports whether the route key was memoized as impossible
func (m *SQLiteMemo) Impossible(ctx context.Context, routeKey string) (bool, error) {
	return m.has(ctx, setImpossible, routeKey)
}

// MarkImpossible memoizes a route key as impossible
func (m *SQLiteMemo) MarkImpossible(ctx context.Context, routeKey string) error {
	return m.add(ctx, setImpossible, routeKey)
}

// NotFastest reports whether the query key was memoized as not fastest
func (m *SQLiteMemo) NotFastest(ctx context.Context, queryKey string) (bool, error) {
	return m.has(ctx, setNotFastest, queryKey)
}

// MarkNotFastest memoizes a query key as not fastest
func (m *SQLiteMemo) MarkNotFastest(ctx context.Context, queryKey string) error {
	return m.add(ctx, setNotFastest, queryKey)
}

// Count returns the number of memoized keys per set
func (m *SQLiteMemo) Count(ctx context.Context) (impossible, notFastest int, err error) {
	rows, err := m.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM attempts GROUP BY kind`)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return 0, 0, err
		}
		switch kind {
		case setImpossible:
			impossible = n
		case setNotFastest:
			notFastest = n
		}
	}
	return impossible, notFastest, rows.Err()
}

// Close closes the database
func (m *SQLiteMemo) Close() error {
	return m.db.Close()
}

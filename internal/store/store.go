// Package store handles SQL persistence of session results.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/keybeat/internal/model"
)

// Store wraps database access for session results.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database and applies migrations. For sqlite the dsn is
// a file path whose directory is created.
func Open(driver, dsn string) (*Store, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	if d.name == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.name == "sqlite" {
		// One writer keeps SQLite from reporting busy under concurrent requests.
		db.SetMaxOpenConns(1)
	}
	store := &Store{db: db, dialect: d}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the normalized driver name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a session result and returns it with its id.
func (s *Store) InsertResult(ctx context.Context, r model.SessionResult) (model.StoredResult, error) {
	createdAt := time.Now().UTC()
	query := `INSERT INTO session_results (poem, wpm, accuracy, mistakes, duration_sec, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{r.Poem, r.WPM, r.Accuracy, r.Mistakes, r.DurationSec, createdAt.Format(time.RFC3339Nano)}

	var id int64
	if s.dialect.lastInsertID {
		res, err := s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
		if err != nil {
			return model.StoredResult{}, err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return model.StoredResult{}, err
		}
	} else {
		row := s.db.QueryRowContext(ctx, s.dialect.rebind(query)+" RETURNING id", args...)
		if err := row.Scan(&id); err != nil {
			return model.StoredResult{}, err
		}
	}
	return model.StoredResult{ID: id, CreatedAt: createdAt, SessionResult: r}, nil
}

// CountResults returns the number of stored results.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_results`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListResults returns up to limit results, newest first, skipping offset.
func (s *Store) ListResults(ctx context.Context, offset, limit int) ([]model.StoredResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	query := s.dialect.rebind(`SELECT id, poem, wpm, accuracy, mistakes, duration_sec, created_at
		FROM session_results
		ORDER BY id DESC
		LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	results := []model.StoredResult{}
	for rows.Next() {
		var r model.StoredResult
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Poem, &r.WPM, &r.Accuracy, &r.Mistakes, &r.DurationSec, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		r.CreatedAt = parsed
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// internal/cache/cache.go
//
// Read-through SQLite cache in front of a trivia.Source.
//
// Characteristics:
//   - Only category details are cached; the pool listing always goes upstream.
//   - Entries older than the TTL are refetched.
//   - Cache read/write failures are logged and fall through to upstream.
//   - Upstream errors are returned untouched.

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/trivia"
)

// Source wraps an upstream trivia.Source with a SQLite store.
type Source struct {
	db       *sql.DB
	upstream trivia.Source
	ttl      time.Duration
	now      func() time.Time
}

// Open opens the database at path, migrates it, and wraps upstream.
func Open(path string, upstream trivia.Source, ttl time.Duration) (*Source, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Source{db: db, upstream: upstream, ttl: ttl, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Source) Close() error { return s.db.Close() }

// Categories always asks upstream so sampling sees the live pool.
func (s *Source) Categories(ctx context.Context, count int) ([]trivia.CategorySummary, error) {
	return s.upstream.Categories(ctx, count)
}

// Category serves a fresh cached copy or fetches and stores one.
func (s *Source) Category(ctx context.Context, id int) (*trivia.CategoryDetail, error) {
	d, err := s.load(ctx, id)
	switch {
	case err == nil:
		log.Debug().Int("id", id).Msg("category cache hit")
		return d, nil
	case !errors.Is(err, sql.ErrNoRows):
		log.Warn().Err(err).Int("id", id).Msg("category cache read")
	}

	d, err = s.upstream.Category(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.Title == "" || d.Clues == nil {
		return d, nil
	}
	if err := s.store(ctx, id, d); err != nil {
		log.Warn().Err(err).Int("id", id).Msg("category cache write")
	}
	return d, nil
}

// Count reports how many categories are cached.
func (s *Source) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM categories`).Scan(&n)
	return n, err
}

// load returns sql.ErrNoRows for missing or stale entries.
func (s *Source) load(ctx context.Context, id int) (*trivia.CategoryDetail, error) {
	var title, cluesJSON, fetched string
	err := s.db.QueryRowContext(ctx,
		`SELECT title, clues_json, fetched_at FROM categories WHERE id=?`, id,
	).Scan(&title, &cluesJSON, &fetched)
	if err != nil {
		return nil, err
	}

	at, err := time.Parse(time.RFC3339, fetched)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(at) > s.ttl {
		return nil, sql.ErrNoRows
	}

	d := &trivia.CategoryDetail{ID: id, Title: title}
	if err := json.Unmarshal([]byte(cluesJSON), &d.Clues); err != nil {
		return nil, fmt.Errorf("decode clues: %w", err)
	}
	return d, nil
}

func (s *Source) store(ctx context.Context, id int, d *trivia.CategoryDetail) error {
	clues, err := json.Marshal(d.Clues)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO categories (id, title, clues_json, fetched_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title=excluded.title, clues_json=excluded.clues_json, fetched_at=excluded.fetched_at`,
		id, d.Title, string(clues), s.now().UTC().Format(time.RFC3339),
	)
	return err
}

// internal/store/memory.go
//
// In-memory session store: one *game.Controller per browser session.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Reap drops sessions idle for longer than a TTL.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/game"
)

// ErrNotFound is returned by Get for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the session persistence interface.
type Store interface {
	// Save adds or replaces a controller under its ID.
	Save(ctx context.Context, c *game.Controller) error

	// Get retrieves a controller by session ID.
	Get(ctx context.Context, id string) (*game.Controller, error)

	// Reap removes sessions idle since before cutoff and reports how many.
	Reap(ctx context.Context, cutoff time.Time) int

	// Len reports the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Controller
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Controller)}
}

func (m *memory) Save(ctx context.Context, c *game.Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[c.ID] = c
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.sessions[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Reap(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, c := range m.sessions {
		if c.Phase() != game.PhaseLoading && c.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunReaper calls Reap every interval until ctx is done.
func RunReaper(ctx context.Context, s Store, ttl, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Reap(ctx, now.Add(-ttl)); n > 0 {
				log.Info().Int("reaped", n).Int("live", s.Len()).Msg("idle sessions reaped")
			}
		}
	}
}

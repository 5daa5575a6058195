// internal/game/controller.go
//
// Lifecycle for one player's board.
// Responsibilities:
//   - Start/Reset: idle|ready → loading → ready (or back to idle on failure).
//   - Click: forward a cell click into the board's reveal state machine.
//   - Keep exactly one board; a reset discards the old one before building.
//
// The controller is the only place build errors become user-visible messages.

package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/sampler"
	"github.com/robalobadob/jeopardy/internal/trivia"
)

// Controller owns one board and drives one surface.
type Controller struct {
	ID string

	builder Builder
	logger  zerolog.Logger

	mu         sync.Mutex // guards fields below
	phase      Phase
	board      *board.Board
	surface    Surface
	lastErr    error
	lastActive time.Time
}

// NewController constructs an idle controller.
func NewController(id string, b Builder, s Surface) *Controller {
	if s == nil {
		s = nopSurface{}
	}
	return &Controller{
		ID:         id,
		builder:    b,
		logger:     log.With().Str("session", id).Logger(),
		phase:      PhaseIdle,
		surface:    s,
		lastActive: time.Now(),
	}
}

// Attach swaps in a new surface (e.g. a reconnecting browser) and brings it
// up to date with the current phase.
// Render calls are made with c.mu held so they reach the surface in the
// same order as the state changes behind them.
func (c *Controller) Attach(s Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface = s
	c.lastActive = time.Now()

	switch {
	case c.phase == PhaseLoading:
		s.ShowLoading()
	case c.phase == PhaseReady && c.board != nil:
		s.DisplayGrid(currentView(c.board))
	case c.lastErr != nil:
		s.ShowError(userMessage(c.lastErr))
	}
}

// Detach drops s if it is still the active surface.
func (c *Controller) Detach(s Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == s {
		c.surface = nopSurface{}
	}
}

// Start builds the first board. It is Reset under another name.
func (c *Controller) Start(ctx context.Context) error { return c.Reset(ctx) }

// Reset discards any board and builds a new one.
// Returns ErrBusy if a build is already running.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == PhaseLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = PhaseLoading
	c.board = nil
	c.lastErr = nil
	c.lastActive = time.Now()
	c.surface.ShowLoading()
	c.mu.Unlock()

	started := time.Now()
	b, err := c.builder.Build(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseIdle
		c.lastErr = err
		c.logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("board build failed")
		c.surface.HideLoading()
		c.surface.ShowError(userMessage(err))
		return err
	}
	c.board = b
	c.phase = PhaseReady
	c.logger.Info().Int("categories", len(b.Categories)).Int("rows", b.Rows()).
		Dur("elapsed", time.Since(started)).Msg("board ready")
	c.surface.HideLoading()
	c.surface.DisplayGrid(freshView(b))
	return nil
}

// Click reveals the clue at (col,row). Invalid targets are logged and
// returned as board.ErrInvalidClickTarget; nothing is rendered for them.
func (c *Controller) Click(col, row int) (board.Outcome, error) {
	c.mu.Lock()
	c.lastActive = time.Now()
	if c.phase != PhaseReady || c.board == nil {
		c.mu.Unlock()
		err := fmt.Errorf("%w: %w", board.ErrInvalidClickTarget, ErrNotReady)
		c.logger.Warn().Int("col", col).Int("row", row).Err(err).Msg("click ignored")
		return board.Outcome{}, err
	}
	defer c.mu.Unlock()
	out, err := c.board.Reveal(col, row)
	if err != nil {
		c.logger.Warn().Int("col", col).Int("row", row).Err(err).Msg("click ignored")
		return out, err
	}
	if !out.Revealed {
		c.logger.Debug().Int("col", col).Int("row", row).Msg("already revealed")
		return out, nil
	}
	c.surface.UpdateCell(col, row, out.Text)
	return out, nil
}

// Phase reports the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns the state shown to the JSON API.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{Phase: c.phase}
	if c.lastErr != nil {
		snap.Error = userMessage(c.lastErr)
	}
	if c.board != nil {
		v := currentView(c.board)
		snap.Grid = &v
	}
	return snap
}

// Touch marks the session as in use without changing the board.
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
}

// LastActive reports when the controller last saw an event.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// userMessage maps build errors to text for the player.
func userMessage(err error) string {
	switch {
	case errors.Is(err, sampler.ErrInvalidSampleSize):
		return "Not enough categories available to build a board. Press Reset to try again."
	case trivia.IsFetchError(err):
		return "Could not load trivia categories. Press Reset to try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Loading was interrupted. Press Reset to try again."
	}
	return "Something went wrong. Press Reset to try again."
}

type nopSurface struct{}

func (nopSurface) DisplayGrid(GridView) {}

func (nopSurface) UpdateCell(int, int, string) {}

func (nopSurface) ShowLoading() {}

func (nopSurface) HideLoading() {}

func (nopSurface) ShowError(string) {}

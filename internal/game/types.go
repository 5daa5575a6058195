// internal/game/types.go
//
// Types shared between the controller and its render surface.
// Defines:
//   - Phase: controller lifecycle (idle/loading/ready).
//   - Surface: the display the controller drives.
//   - GridView: what a full grid render contains.

package game

import (
	"context"
	"errors"

	"github.com/robalobadob/jeopardy/internal/board"
)

var (
	// ErrBusy is returned when a start/reset arrives while a board is loading.
	ErrBusy = errors.New("board is loading")

	// ErrNotReady is wrapped when a click arrives with no board on display.
	ErrNotReady = errors.New("no board on display")
)

// Phase is the controller's lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// Builder produces a complete board or fails.
type Builder interface {
	Build(ctx context.Context) (*board.Board, error)
}

// Surface receives render requests. The controller calls these with its lock
// held: implementations must not block or call back into the controller.
type Surface interface {
	DisplayGrid(v GridView)
	UpdateCell(col, row int, text string)
	ShowLoading()
	HideLoading()
	ShowError(msg string)
}

// ColumnView is one rendered column.
type ColumnView struct {
	Title string   `json:"title"`
	Cells []string `json:"cells"`
}

// GridView is a full grid render request.
type GridView struct {
	Categories []ColumnView `json:"categories"`
}

// Snapshot is the controller state exposed over the JSON API.
type Snapshot struct {
	Phase Phase     `json:"phase"`
	Error string    `json:"error,omitempty"`
	Grid  *GridView `json:"grid,omitempty"`
}

// freshView renders b with every cell obscured.
func freshView(b *board.Board) GridView {
	v := GridView{Categories: make([]ColumnView, len(b.Categories))}
	for i, cat := range b.Categories {
		cells := make([]string, len(cat.Clues))
		for j := range cells {
			cells[j] = board.Placeholder
		}
		v.Categories[i] = ColumnView{Title: cat.Title, Cells: cells}
	}
	return v
}

// currentView renders b as it should look right now.
func currentView(b *board.Board) GridView {
	v := GridView{Categories: make([]ColumnView, len(b.Categories))}
	for i, cat := range b.Categories {
		cells := make([]string, len(cat.Clues))
		for j, c := range cat.Clues {
			cells[j] = c.Display()
		}
		v.Categories[i] = ColumnView{Title: cat.Title, Cells: cells}
	}
	return v
}

// internal/board/types.go
//
// Core type definitions for a trivia board.
// Defines:
//   - RevealState: per-clue progress (hidden/question/answer).
//   - Clue: one question/answer pair plus its reveal state.
//   - Category: a titled column of clues.
//   - Board: the full set of columns for one game session.

package board

import "errors"

// Placeholder is shown in every cell of a freshly displayed grid.
const Placeholder = "?"

var (
	// ErrInvalidClickTarget is returned when a (col,row) pair does not
	// address a clue on the current board.
	ErrInvalidClickTarget = errors.New("invalid click target")

	// ErrClueCountMismatch is returned when columns disagree on row count.
	ErrClueCountMismatch = errors.New("clue count mismatch")
)

// RevealState represents how much of a clue has been shown.
// States only move forward: hidden → question → answer.
type RevealState int

const (
	Hidden RevealState = iota
	Question
	Answer
)

func (s RevealState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Question:
		return "question"
	case Answer:
		return "answer"
	}
	return "unknown"
}

// MarshalText lets RevealState appear by name in JSON snapshots.
func (s RevealState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Clue holds a single question/answer pair.
type Clue struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	State    RevealState `json:"state"`
}

// Category is one column of the board. Clue order is row order.
type Category struct {
	Title string  `json:"title"`
	Clues []*Clue `json:"clues"`
}

// Board holds every category for one game session.
type Board struct {
	Categories []*Category `json:"categories"`
}

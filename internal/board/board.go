// internal/board/board.go
//
// Board construction and the per-clue reveal state machine.
//
// State transitions (Reveal):
//   - hidden   → shows the question, moves to question.
//   - question → shows the answer, moves to answer.
//   - answer   → terminal; further reveals are no-ops.

package board

import "fmt"

// Outcome is the result of a single reveal attempt.
// Revealed is false for a no-op on an already answered clue.
type Outcome struct {
	Text     string
	State    RevealState
	Revealed bool
}

// NewClue constructs a hidden clue.
func NewClue(question, answer string) *Clue {
	return &Clue{Question: question, Answer: answer, State: Hidden}
}

// Reveal advances the clue by exactly one state.
func (c *Clue) Reveal() Outcome {
	switch c.State {
	case Hidden:
		c.State = Question
		return Outcome{Text: c.Question, State: c.State, Revealed: true}
	case Question:
		c.State = Answer
		return Outcome{Text: c.Answer, State: c.State, Revealed: true}
	default:
		return Outcome{Text: c.Answer, State: c.State}
	}
}

// Display returns the text a cell should currently show.
func (c *Clue) Display() string {
	switch c.State {
	case Question:
		return c.Question
	case Answer:
		return c.Answer
	}
	return Placeholder
}

// New assembles a board from categories in the given order.
// Every category must carry the same number of clues.
func New(categories []*Category) (*Board, error) {
	for i, cat := range categories {
		if len(cat.Clues) != len(categories[0].Clues) {
			return nil, fmt.Errorf("category %d %q has %d clues, want %d: %w",
				i, cat.Title, len(cat.Clues), len(categories[0].Clues), ErrClueCountMismatch)
		}
	}
	return &Board{Categories: categories}, nil
}

// Rows returns the number of clues per category.
func (b *Board) Rows() int {
	if len(b.Categories) == 0 {
		return 0
	}
	return len(b.Categories[0].Clues)
}

// Clue looks up the clue at column col, row row.
func (b *Board) Clue(col, row int) (*Clue, error) {
	if col < 0 || col >= len(b.Categories) {
		return nil, fmt.Errorf("column %d out of range: %w", col, ErrInvalidClickTarget)
	}
	clues := b.Categories[col].Clues
	if row < 0 || row >= len(clues) {
		return nil, fmt.Errorf("row %d out of range: %w", row, ErrInvalidClickTarget)
	}
	return clues[row], nil
}

// Reveal resolves (col,row) and advances that clue.
func (b *Board) Reveal(col, row int) (Outcome, error) {
	c, err := b.Clue(col, row)
	if err != nil {
		return Outcome{}, err
	}
	return c.Reveal(), nil
}

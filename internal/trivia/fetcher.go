// internal/trivia/fetcher.go
//
// Turns a remote category into a board column: every clue starts hidden and
// only question/answer survive the mapping.

package trivia

import (
	"context"
	"fmt"

	"github.com/robalobadob/jeopardy/internal/board"
)

// Fetcher loads single categories from a Source.
type Fetcher struct {
	src Source
}

// NewFetcher wraps src.
func NewFetcher(src Source) *Fetcher {
	return &Fetcher{src: src}
}

// FetchCategory retrieves category id and normalizes its clues.
// Every failure is returned as a *FetchError.
func (f *Fetcher) FetchCategory(ctx context.Context, id int) (*board.Category, error) {
	detail, err := f.src.Category(ctx, id)
	if err != nil {
		return nil, &FetchError{Op: "category", CategoryID: id, Err: err}
	}
	if detail == nil || detail.Title == "" || detail.Clues == nil {
		return nil, &FetchError{Op: "category", CategoryID: id, Err: fmt.Errorf("title or clues: %w", ErrMissingData)}
	}

	cat := &board.Category{
		Title: detail.Title,
		Clues: make([]*board.Clue, 0, len(detail.Clues)),
	}
	for _, rc := range detail.Clues {
		cat.Clues = append(cat.Clues, board.NewClue(rc.Question, rc.Answer))
	}
	return cat, nil
}

// internal/trivia/builder.go
//
// Board assembly.
// Sequence (Build):
//   1. List PoolSize categories from the source.
//   2. Drop categories known to be too short for Rows (when Rows > 0).
//   3. Sample CategoryCount distinct entries; sampled order is column order.
//   4. Fetch each category one after another.
//   5. Enforce a uniform row count and assemble the board.
//
// Any failure aborts the build; a partial board is never returned.

package trivia

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/daily"
	"github.com/robalobadob/jeopardy/internal/sampler"
)

const (
	DefaultCategoryCount = 6
	DefaultPoolSize      = 100
	DefaultRows          = 5
)

// Options controls board dimensions.
// Rows == 0 keeps every clue a category returns, but all columns must agree.
type Options struct {
	CategoryCount int
	PoolSize      int
	Rows          int
}

// DefaultOptions mirrors the classic 6x5 board drawn from a pool of 100.
func DefaultOptions() Options {
	return Options{
		CategoryCount: DefaultCategoryCount,
		PoolSize:      DefaultPoolSize,
		Rows:          DefaultRows,
	}
}

// Seeder supplies the random source for one build.
type Seeder func() *rand.Rand

// RandomSeeder gives every build a fresh entropy-seeded source.
func RandomSeeder() Seeder {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// DailySeeder seeds builds from the current date so a day's boards match.
func DailySeeder(salt string, now func() time.Time) Seeder {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(daily.Seed(now(), salt)))
	}
}

// Builder produces complete boards.
type Builder struct {
	src     Source
	fetcher *Fetcher
	opts    Options
	seed    Seeder
}

// NewBuilder constructs a Builder. A nil seeder means RandomSeeder.
func NewBuilder(src Source, opts Options, seed Seeder) *Builder {
	if seed == nil {
		seed = RandomSeeder()
	}
	return &Builder{src: src, fetcher: NewFetcher(src), opts: opts, seed: seed}
}

// Build runs the full acquisition sequence.
func (b *Builder) Build(ctx context.Context) (*board.Board, error) {
	pool, err := b.src.Categories(ctx, b.opts.PoolSize)
	if err != nil {
		return nil, &FetchError{Op: "categories", Err: err}
	}
	pool = b.eligible(pool)

	picked, err := sampler.Pick(b.seed(), pool, b.opts.CategoryCount)
	if err != nil {
		return nil, fmt.Errorf("pick categories: %w", err)
	}

	cats := make([]*board.Category, 0, len(picked))
	for _, summary := range picked {
		cat, err := b.fetcher.FetchCategory(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		if err := b.fitRows(cat, cats); err != nil {
			return nil, &FetchError{Op: "category", CategoryID: summary.ID, Err: err}
		}
		log.Debug().Int("id", summary.ID).Str("title", cat.Title).Int("clues", len(cat.Clues)).Msg("fetched category")
		cats = append(cats, cat)
	}

	return board.New(cats)
}

// eligible filters out categories the listing already reports as too short.
// Entries without a count are kept; the fetch decides for them.
func (b *Builder) eligible(pool []CategorySummary) []CategorySummary {
	if b.opts.Rows <= 0 {
		return pool
	}
	out := make([]CategorySummary, 0, len(pool))
	for _, s := range pool {
		if s.CluesCount > 0 && s.CluesCount < b.opts.Rows {
			continue
		}
		out = append(out, s)
	}
	return out
}

// fitRows trims cat to Rows clues, or checks it against the columns so far.
func (b *Builder) fitRows(cat *board.Category, prev []*board.Category) error {
	if b.opts.Rows > 0 {
		if len(cat.Clues) < b.opts.Rows {
			return fmt.Errorf("got %d clues, want %d: %w", len(cat.Clues), b.opts.Rows, board.ErrClueCountMismatch)
		}
		cat.Clues = cat.Clues[:b.opts.Rows]
		return nil
	}
	if len(prev) > 0 && len(cat.Clues) != len(prev[0].Clues) {
		return fmt.Errorf("got %d clues, want %d: %w", len(cat.Clues), len(prev[0].Clues), board.ErrClueCountMismatch)
	}
	return nil
}

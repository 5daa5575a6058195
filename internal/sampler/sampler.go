// internal/sampler/sampler.go
//
// Random selection without replacement.
//
// Callers pass their own *rand.Rand so builds can be seeded (daily boards)
// or left entropy-seeded (random boards).

package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidSampleSize is returned when k cannot be drawn from the pool.
var ErrInvalidSampleSize = errors.New("invalid sample size")

// Sample returns k distinct integers drawn from [0, poolSize).
// The order of the result is random.
func Sample(r *rand.Rand, poolSize, k int) ([]int, error) {
	if k < 0 || poolSize < 0 || k > poolSize {
		return nil, fmt.Errorf("sample %d from %d: %w", k, poolSize, ErrInvalidSampleSize)
	}

	// Partial Fisher–Yates over a sparse index map; only k swaps are recorded.
	swapped := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + r.IntN(poolSize-i)
		out[i] = at(j)
		swapped[j] = at(i)
	}
	return out, nil
}

// Pick returns k distinct elements of items. items is not modified.
func Pick[T any](r *rand.Rand, items []T, k int) ([]T, error) {
	idx, err := Sample(r, len(items), k)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out, nil
}

// Package questions draws question sets and multiple-choice options.
package questions

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// Generator shuffles with an owned random source. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a generator over rng. A nil rng is seeded from the clock.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// shuffle is an in-place Fisher–Yates shuffle.
func shuffle[T any](rng *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// PrepareSet returns count distinct records drawn uniformly from pool. The
// pool itself is left untouched.
func PrepareSet[T any](g *Generator, pool []T, count int) ([]T, error) {
	if count < 0 || len(pool) < count {
		return nil, fmt.Errorf("prepare %d questions from %d records: %w", count, len(pool), domain.ErrInsufficientData)
	}
	work := make([]T, len(pool))
	copy(work, pool)

	g.mu.Lock()
	shuffle(g.rng, work)
	g.mu.Unlock()

	return work[:count:count], nil
}

// BuildDistractors picks n-1 distinct values other than correct, sampled
// without replacement from the deduplicated values.
func (g *Generator) BuildDistractors(correct string, values []string, n int) ([]string, error) {
	want := n - 1
	if want <= 0 {
		return nil, nil
	}
	seen := map[string]struct{}{correct: {}}
	candidates := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		candidates = append(candidates, v)
	}
	if len(candidates) < want {
		return nil, fmt.Errorf("need %d distractors, have %d distinct values: %w", want, len(candidates), domain.ErrInsufficientData)
	}

	g.mu.Lock()
	shuffle(g.rng, candidates)
	g.mu.Unlock()

	return candidates[:want:want], nil
}

// Options merges the correct answer with its distractors in a fresh random order.
func (g *Generator) Options(correct string, distractors []string) []string {
	out := make([]string, 0, len(distractors)+1)
	out = append(out, correct)
	out = append(out, distractors...)

	g.mu.Lock()
	shuffle(g.rng, out)
	g.mu.Unlock()
	return out
}

// Choices is BuildDistractors followed by Options.
func (g *Generator) Choices(correct string, values []string, n int) ([]string, error) {
	d, err := g.BuildDistractors(correct, values, n)
	if err != nil {
		return nil, err
	}
	return g.Options(correct, d), nil
}

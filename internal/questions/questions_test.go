package questions_test

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/questions"
)

func seeded() *questions.Generator {
	return questions.New(rand.New(rand.NewSource(42)))
}

func TestPrepareSetFullPoolIsPermutation(t *testing.T) {
	pool := []string{"kr", "jp", "fr", "de", "us"}
	orig := append([]string(nil), pool...)

	set, err := questions.PrepareSet(seeded(), pool, len(pool))
	require.NoError(t, err)
	assert.ElementsMatch(t, pool, set)
	assert.Equal(t, orig, pool, "pool must not be mutated")
}

func TestPrepareSetRejectsSmallPool(t *testing.T) {
	_, err := questions.PrepareSet(seeded(), []int{1, 2, 3}, 4)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestPrepareSetReturnsDistinctRecords(t *testing.T) {
	pool := make([]int, 50)
	for i := range pool {
		pool[i] = i
	}
	set, err := questions.PrepareSet(seeded(), pool, 10)
	require.NoError(t, err)
	require.Len(t, set, 10)

	seen := map[int]bool{}
	for _, v := range set {
		assert.False(t, seen[v], "duplicate record %d", v)
		seen[v] = true
	}
}

func TestPrepareSetIsRoughlyUniform(t *testing.T) {
	g := seeded()
	pool := []int{0, 1, 2, 3}
	counts := make([]int, len(pool))
	const rounds = 8000
	for i := 0; i < rounds; i++ {
		set, err := questions.PrepareSet(g, pool, 1)
		require.NoError(t, err)
		counts[set[0]]++
	}
	for v, c := range counts {
		assert.InDelta(t, rounds/len(pool), c, rounds/20, "value %d drawn %d times", v, c)
	}
}

func TestBuildDistractorsExcludesCorrectAndDuplicates(t *testing.T) {
	values := []string{"Seoul", "Tokyo", "Tokyo", "Paris", "", "Berlin", "Seoul", "Rome"}
	d, err := seeded().BuildDistractors("Seoul", values, 4)
	require.NoError(t, err)
	require.Len(t, d, 3)
	assert.NotContains(t, d, "Seoul")

	sorted := append([]string(nil), d...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		assert.NotEqual(t, sorted[i-1], sorted[i])
	}
}

func TestBuildDistractorsNeedsEnoughDistinctValues(t *testing.T) {
	_, err := seeded().BuildDistractors("Seoul", []string{"Seoul", "Tokyo", "Tokyo"}, 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestChoicesContainCorrectAnswer(t *testing.T) {
	g := seeded()
	values := []string{"Seoul", "Tokyo", "Paris", "Berlin", "Rome", "Madrid"}
	for i := 0; i < 20; i++ {
		opts, err := g.Choices("Paris", values, 4)
		require.NoError(t, err)
		assert.Len(t, opts, 4)
		assert.Contains(t, opts, "Paris")
	}
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/mapasset"
)

func TestResultTiers(t *testing.T) {
	cases := []struct {
		score, total int
		message      string
	}{
		{10, 10, messagePerfect},
		{7, 10, messageGreat},
		{9, 10, messageGreat},
		{4, 10, messageGood},
		{6, 10, messageGood},
		{3, 10, messageRetry},
		{0, 10, messageRetry},
		{0, 0, messageRetry},
	}
	for _, tc := range cases {
		r := result(domain.ModeFlag, tc.score, tc.total)
		assert.Equal(t, tc.message, r.Message, "%d/%d", tc.score, tc.total)
	}
	assert.Equal(t, "7 / 10", result(domain.ModeCapital, 7, 10).Label)
}

func TestOptionMarks(t *testing.T) {
	opts := []string{"Seoul", "Tokyo", "Paris", "Rome"}

	hit := optionMarks(opts, "Paris", "Paris", true)
	assert.Equal(t, map[string]string{
		"Seoul": domain.MarkDisabled,
		"Tokyo": domain.MarkDisabled,
		"Paris": domain.MarkCorrect,
		"Rome":  domain.MarkDisabled,
	}, hit)

	miss := optionMarks(opts, "Rome", "Paris", false)
	assert.Equal(t, domain.MarkIncorrect, miss["Rome"])
	assert.Equal(t, domain.MarkCorrect, miss["Paris"])
	assert.Equal(t, domain.MarkDisabled, miss["Seoul"])
}

func TestMarkMapAnswerSkipsMissingTarget(t *testing.T) {
	asset, err := mapasset.Parse([]byte(`<svg viewBox="0 0 20 10"><path id="kr" d="M0 0 h10 v10 h-10 z"/></svg>`))
	assert.NoError(t, err)

	o := asset.NewOverlay()
	markMapAnswer(o, "kr", "zz", false)
	assert.Equal(t, map[string]string{"kr": domain.MarkIncorrect}, o.Marks())

	o = asset.NewOverlay()
	markMapAnswer(o, "kr", "kr", true)
	assert.Equal(t, map[string]string{"kr": domain.MarkHighlight}, o.Marks())
}

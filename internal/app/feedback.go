package app

import (
	"fmt"

	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/mapasset"
)

// optionMarks disables every option, marks the chosen one, and on a miss
// also reveals the correct option.
func optionMarks(options []string, given, correctAnswer string, correct bool) map[string]string {
	marks := make(map[string]string, len(options))
	for _, o := range options {
		marks[o] = domain.MarkDisabled
	}
	if correct {
		marks[given] = domain.MarkCorrect
		return marks
	}
	if _, ok := marks[given]; ok {
		marks[given] = domain.MarkIncorrect
	}
	if _, ok := marks[correctAnswer]; ok {
		marks[correctAnswer] = domain.MarkCorrect
	}
	return marks
}

// markMapAnswer annotates the overlay after a map click. Missing territories
// are skipped.
func markMapAnswer(o *mapasset.Overlay, clicked, target string, correct bool) {
	if correct {
		o.Mark(clicked, domain.MarkHighlight)
		return
	}
	o.Mark(clicked, domain.MarkIncorrect)
	o.Mark(target, domain.MarkHighlight)
}

const (
	messagePerfect = "Perfect! You are a geography master!"
	messageGreat   = "Great job! You really know your geography!"
	messageGood    = "Nice! Want to learn a little more?"
	messageRetry   = "So close. Give it another try!"
)

func result(mode domain.Mode, score, total int) domain.Result {
	r := domain.Result{
		Mode:  mode,
		Score: score,
		Total: total,
		Label: fmt.Sprintf("%d / %d", score, total),
	}
	var pct float64
	if total > 0 {
		pct = float64(score) / float64(total) * 100
	}
	switch {
	case total > 0 && score == total:
		r.Message = messagePerfect
	case pct >= 70:
		r.Message = messageGreat
	case pct >= 40:
		r.Message = messageGood
	default:
		r.Message = messageRetry
	}
	return r
}

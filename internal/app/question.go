package app

import (
	"fmt"

	"github.com/tg383520/geo-quiz/internal/answer"
	"github.com/tg383520/geo-quiz/internal/catalog"
	"github.com/tg383520/geo-quiz/internal/domain"
)

const (
	promptFlag          = "Which country does this flag belong to?"
	promptCapital       = "What is the capital of %s?"
	promptMapFind       = "Find %s on the map."
	instructionMapFind  = "Hold the right mouse button and scroll to zoom, or drag to pan. Pinch and drag on touch screens."
	instructionMapGuess = "Which country is marked on the map?"
)

// question is one mounted question of a running quiz.
type question struct {
	country     domain.Country
	prompt      string
	instruction string
	flagURL     string
	options     []string
	answer      string
	accepted    answer.Set
}

// buildQuestion prepares the question for country. pool is the record set
// distractors are drawn from.
func (s *Session) buildQuestion(country domain.Country, pool []domain.Country) (question, error) {
	opts := s.svc.opts
	lang := opts.Language
	q := question{country: country}

	var values []string
	switch s.mode {
	case domain.ModeFlag:
		q.prompt = promptFlag
		q.flagURL = country.Flag.SVG
		if q.flagURL == "" {
			q.flagURL = country.Flag.PNG
		}
		q.answer = country.DisplayName(lang)
		values = catalog.Names(pool, lang)
		if s.style == domain.StyleText {
			q.accepted = answer.NameSet(country, opts.Aliases)
		}
	case domain.ModeCapital:
		q.prompt = fmt.Sprintf(promptCapital, country.DisplayName(lang))
		q.answer = country.Capital()
		values = catalog.Capitals(pool)
		if s.style == domain.StyleText {
			q.accepted = answer.CapitalSet(country, opts.Aliases)
		}
	case domain.ModeMapFind:
		q.prompt = fmt.Sprintf(promptMapFind, country.DisplayName(lang))
		q.instruction = instructionMapFind
		q.answer = country.DisplayName(lang)
		return q, nil
	case domain.ModeMapGuess:
		q.instruction = instructionMapGuess
		q.answer = country.DisplayName(lang)
		values = catalog.Names(pool, lang)
		if s.style == domain.StyleText {
			q.accepted = answer.NameSet(country, opts.Aliases)
		}
	default:
		return question{}, domain.ErrUnknownMode
	}

	if s.style == domain.StyleChoice {
		options, err := s.svc.gen.Choices(q.answer, values, opts.OptionCount)
		if err != nil {
			return question{}, err
		}
		q.options = options
	}
	return q, nil
}

func (s *Session) progressLocked() domain.Progress {
	total := len(s.set)
	p := domain.Progress{Index: s.index + 1, Total: total, Score: s.score}
	p.Label = fmt.Sprintf("Question %d / %d", p.Index, total)
	if total > 0 {
		p.Percent = float64(p.Index) / float64(total) * 100
	}
	return p
}

func (s *Session) viewLocked() domain.QuestionView {
	q := s.current
	v := domain.QuestionView{
		Mode:        s.mode,
		Style:       s.style,
		Prompt:      q.prompt,
		Instruction: q.instruction,
		FlagURL:     q.flagURL,
		Options:     append([]string(nil), q.options...),
		Progress:    s.progressLocked(),
	}
	if s.ctrl != nil {
		mv := s.mapViewLocked()
		v.Map = &mv
	}
	return v
}

func (s *Session) mapViewLocked() domain.MapView {
	return domain.MapView{
		ViewBox: s.ctrl.Engine().View(),
		Marks:   s.overlay.Marks(),
		Arrow:   s.overlay.Arrow(),
		Zoomed:  s.ctrl.Engine().Zoomed(),
		Locked:  s.answered,
	}
}

package app

import (
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// Recorder receives quiz events for metrics.
type Recorder interface {
	CatalogLoaded(countries int, took time.Duration)
	SessionOpened()
	SessionClosed()
	QuizStarted(mode domain.Mode)
	Answered(mode domain.Mode, correct bool)
	QuizCompleted(mode domain.Mode, score, total int)
}

type nopRecorder struct{}

func (nopRecorder) CatalogLoaded(int, time.Duration)    {}
func (nopRecorder) SessionOpened()                      {}
func (nopRecorder) SessionClosed()                      {}
func (nopRecorder) QuizStarted(domain.Mode)             {}
func (nopRecorder) Answered(domain.Mode, bool)          {}
func (nopRecorder) QuizCompleted(domain.Mode, int, int) {}

package app

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tg383520/geo-quiz/internal/answer"
	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/mapasset"
	"github.com/tg383520/geo-quiz/internal/questions"
	"github.com/tg383520/geo-quiz/internal/viewport"
)

// Session is one play-through owned by a single client connection. All
// methods are safe for concurrent use; they serialize on the session mutex.
type Session struct {
	id  string
	svc *QuizService
	log *zap.Logger

	mu       sync.Mutex
	screen   domain.Screen
	mode     domain.Mode
	style    domain.Style
	data     *quizData
	set      []domain.Country
	pool     []domain.Country
	index    int
	score    int
	current  question
	answered bool
	feedback *domain.Feedback

	ctrl    *viewport.Controller
	overlay *mapasset.Overlay
	screenW float64
	screenH float64
}

func newSession(id string, svc *QuizService) *Session {
	return &Session{
		id:     id,
		svc:    svc,
		log:    svc.log.With(zap.String("session", id)),
		screen: domain.ScreenStart,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Screen returns the visible stage.
func (s *Session) Screen() domain.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Start begins a quiz of mode answered in style and mounts its first question.
// On insufficient data the session stays on the start screen.
func (s *Session) Start(mode domain.Mode, style domain.Style) (domain.QuestionView, error) {
	if !mode.Valid() {
		return domain.QuestionView{}, domain.ErrUnknownMode
	}
	if style == "" {
		style = domain.StyleChoice
	}
	if style != domain.StyleChoice && style != domain.StyleText {
		return domain.QuestionView{}, domain.ErrUnsupportedStyle
	}
	if mode == domain.ModeMapFind && style == domain.StyleText {
		return domain.QuestionView{}, domain.ErrUnsupportedStyle
	}

	data, err := s.svc.snapshot()
	if err != nil {
		return domain.QuestionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.mode = mode
	s.style = style
	s.data = data

	pool := data.catalog.Countries
	if mode.UsesMap() {
		pool = data.mapCountries
	}
	set, err := questions.PrepareSet(s.svc.gen, pool, s.svc.opts.QuestionCount)
	if err != nil {
		s.screen = domain.ScreenStart
		return domain.QuestionView{}, err
	}
	s.pool = pool
	s.set = set

	if err := s.mountLocked(); err != nil {
		s.resetLocked()
		s.screen = domain.ScreenStart
		return domain.QuestionView{}, err
	}
	s.screen = domain.ScreenQuiz
	s.svc.opts.Recorder.QuizStarted(mode)
	s.log.Debug("quiz started", zap.String("mode", string(mode)), zap.String("style", string(style)))
	return s.viewLocked(), nil
}

// PlayAgain restarts the last mode and style.
func (s *Session) PlayAgain() (domain.QuestionView, error) {
	s.mu.Lock()
	mode, style := s.mode, s.style
	s.mu.Unlock()
	if mode == "" {
		return domain.QuestionView{}, domain.ErrUnknownMode
	}
	return s.Start(mode, style)
}

// Quit returns to the start screen from any screen.
func (s *Session) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.screen = domain.ScreenStart
}

// Current returns the view of the mounted question.
func (s *Session) Current() (domain.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != domain.ScreenQuiz {
		return domain.QuestionView{}, domain.ErrNoActiveQuestion
	}
	return s.viewLocked(), nil
}

// AnswerOption submits a multiple-choice selection.
func (s *Session) AnswerOption(selected string) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.answerableLocked(); err != nil {
		return domain.Feedback{}, err
	}
	if s.style != domain.StyleChoice || s.mode == domain.ModeMapFind {
		return domain.Feedback{}, domain.ErrWrongInput
	}
	if !contains(s.current.options, selected) {
		return domain.Feedback{}, domain.ErrWrongInput
	}

	correct := answer.MatchChoice(selected, s.current.answer)
	fb := s.settleLocked(selected, correct)
	fb.OptionMarks = optionMarks(s.current.options, selected, s.current.answer, correct)
	return s.storeLocked(fb), nil
}

// AnswerText submits a free-text answer. Blank input yields ErrEmptyAnswer
// and leaves the question open.
func (s *Session) AnswerText(input string) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.answerableLocked(); err != nil {
		return domain.Feedback{}, err
	}
	if s.style != domain.StyleText {
		return domain.Feedback{}, domain.ErrWrongInput
	}

	correct, err := s.current.accepted.Match(input)
	if err != nil {
		return domain.Feedback{}, err
	}
	fb := s.settleLocked(strings.TrimSpace(input), correct)
	return s.storeLocked(fb), nil
}

// ClickMap resolves a click on the map at a screen point. ok is false when
// the click was swallowed by a drag, hit no territory or came during a
// map-guess question, where the map only shows the target.
func (s *Session) ClickMap(p viewport.Point) (fb domain.Feedback, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.answerableLocked(); err != nil {
		return domain.Feedback{}, false, err
	}
	if s.ctrl == nil {
		return domain.Feedback{}, false, domain.ErrNoMap
	}
	if s.mode != domain.ModeMapFind {
		return domain.Feedback{}, false, nil
	}

	clicked, hit := s.ctrl.Click(p)
	if !hit {
		return domain.Feedback{}, false, nil
	}
	target := s.current.country.Code()
	correct := clicked == target
	fb = s.settleLocked(clicked, correct)
	markMapAnswer(s.overlay, clicked, target, correct)
	fb.Territories = s.overlay.Marks()
	return s.storeLocked(fb), true, nil
}

// Next advances past an answered question. After the last question it
// returns the result and the session moves to the results screen.
func (s *Session) Next() (*domain.QuestionView, *domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != domain.ScreenQuiz {
		return nil, nil, domain.ErrNoActiveQuestion
	}
	if !s.answered {
		return nil, nil, domain.ErrNotAnswered
	}

	s.index++
	if s.index >= len(s.set) {
		s.unmountLocked()
		s.screen = domain.ScreenResults
		res := result(s.mode, s.score, len(s.set))
		s.svc.opts.Recorder.QuizCompleted(s.mode, s.score, len(s.set))
		s.log.Debug("quiz completed", zap.String("mode", string(s.mode)), zap.String("score", res.Label))
		return nil, &res, nil
	}
	if err := s.mountLocked(); err != nil {
		return nil, nil, err
	}
	v := s.viewLocked()
	return &v, nil, nil
}

// Results returns the final score once the quiz is over.
func (s *Session) Results() (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != domain.ScreenResults {
		return domain.Result{}, domain.ErrNoActiveQuestion
	}
	return result(s.mode, s.score, len(s.set)), nil
}

// Score returns the running score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Feedback returns the feedback of the current question, if answered.
func (s *Session) Feedback() (domain.Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedback == nil {
		return domain.Feedback{}, false
	}
	return *s.feedback, true
}

func (s *Session) answerableLocked() error {
	if s.screen != domain.ScreenQuiz {
		return domain.ErrNoActiveQuestion
	}
	if s.answered {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

func (s *Session) settleLocked(given string, correct bool) domain.Feedback {
	s.answered = true
	if correct {
		s.score++
	}
	if s.ctrl != nil {
		// pointer interaction stops counting as answers once settled
		s.ctrl.Release()
	}
	s.svc.opts.Recorder.Answered(s.mode, correct)
	return domain.Feedback{
		Correct:       correct,
		Given:         given,
		Answer:        s.current.answer,
		Score:         s.score,
		NextAvailable: true,
	}
}

func (s *Session) storeLocked(fb domain.Feedback) domain.Feedback {
	s.feedback = &fb
	return fb
}

// mountLocked builds the question at index and, for map modes, a fresh
// viewport and overlay.
func (s *Session) mountLocked() error {
	s.unmountLocked()
	s.answered = false
	s.feedback = nil

	q, err := s.buildQuestion(s.set[s.index], s.pool)
	if err != nil {
		return err
	}
	s.current = q

	if !s.mode.UsesMap() {
		return nil
	}
	asset := s.data.asset
	if asset == nil {
		return domain.ErrNoMap
	}
	s.ctrl = viewport.NewController(asset.ViewBox(), asset, s.svc.opts.Map)
	if s.screenW > 0 && s.screenH > 0 {
		s.ctrl.Engine().Resize(s.screenW, s.screenH)
	}
	s.overlay = asset.NewOverlay()
	if s.mode == domain.ModeMapGuess {
		code := q.country.Code()
		s.overlay.Mark(code, domain.MarkHighlight)
		s.overlay.PointAt(code)
	}
	return nil
}

func (s *Session) unmountLocked() {
	if s.ctrl != nil {
		s.ctrl.Release()
	}
	s.ctrl = nil
	s.overlay = nil
}

func (s *Session) resetLocked() {
	s.unmountLocked()
	s.set = nil
	s.pool = nil
	s.index = 0
	s.score = 0
	s.answered = false
	s.feedback = nil
	s.current = question{}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) now() time.Time {
	return s.svc.opts.Clock()
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

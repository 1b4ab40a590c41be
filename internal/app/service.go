package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tg383520/geo-quiz/internal/answer"
	"github.com/tg383520/geo-quiz/internal/catalog"
	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/mapasset"
	"github.com/tg383520/geo-quiz/internal/questions"
	"github.com/tg383520/geo-quiz/internal/viewport"
)

const (
	DefaultQuestionCount = 10
	DefaultOptionCount   = 4

	loadFailedMessage = "Failed to load quiz data. Please refresh the page."
)

// SessionRepository abstracts where live quiz sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(id string) (*Session, bool)
	Remove(id string)
	Len() int
}

// CatalogRepository loads the country catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, lang string) (domain.Catalog, error)
}

// MapSource loads the world map document.
type MapSource interface {
	LoadMap(ctx context.Context) (*mapasset.Asset, error)
}

// MapSourceFunc adapts a function to MapSource.
type MapSourceFunc func(ctx context.Context) (*mapasset.Asset, error)

func (f MapSourceFunc) LoadMap(ctx context.Context) (*mapasset.Asset, error) { return f(ctx) }

// MapFile loads the map from a path on disk.
func MapFile(path string) MapSource {
	return MapSourceFunc(func(context.Context) (*mapasset.Asset, error) {
		return mapasset.Load(path)
	})
}

// Status is the readiness of the quiz data.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// StatusView is what clients see before they can start a quiz.
type StatusView struct {
	State        Status `json:"state"`
	Message      string `json:"message,omitempty"`
	Countries    int    `json:"countries"`
	MapCountries int    `json:"mapCountries"`
}

// Options tunes quiz sessions.
type Options struct {
	Language      string
	QuestionCount int
	OptionCount   int
	Aliases       answer.Aliases
	Map           viewport.ControllerOptions
	Rand          *rand.Rand
	Clock         func() time.Time
	Logger        *zap.Logger
	Recorder      Recorder
}

func (o Options) withDefaults() Options {
	if o.QuestionCount <= 0 {
		o.QuestionCount = DefaultQuestionCount
	}
	if o.OptionCount <= 1 {
		o.OptionCount = DefaultOptionCount
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

// quizData is the immutable result of a successful Initialize.
type quizData struct {
	catalog      domain.Catalog
	asset        *mapasset.Asset
	mapCountries []domain.Country
}

// QuizService owns the loaded quiz data and hands out sessions.
type QuizService struct {
	sessions SessionRepository
	catalogs CatalogRepository
	maps     MapSource
	opts     Options
	gen      *questions.Generator
	log      *zap.Logger

	initOnce sync.Once

	mu          sync.RWMutex
	status      StatusView
	data        *quizData
	subscribers map[chan StatusView]struct{}
}

// NewQuizService wires a service. maps may be nil, which disables the map modes.
func NewQuizService(store SessionRepository, catalogs CatalogRepository, maps MapSource, opts Options) *QuizService {
	opts = opts.withDefaults()
	return &QuizService{
		sessions:    store,
		catalogs:    catalogs,
		maps:        maps,
		opts:        opts,
		gen:         questions.New(opts.Rand),
		log:         opts.Logger,
		status:      StatusView{State: StatusLoading},
		subscribers: make(map[chan StatusView]struct{}),
	}
}

// Initialize loads the catalog and the map concurrently. It runs once; a
// failure leaves the service failed for good.
func (s *QuizService) Initialize(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		err = s.initialize(ctx)
	})
	return err
}

func (s *QuizService) initialize(ctx context.Context) error {
	started := s.opts.Clock()
	var (
		cat   domain.Catalog
		asset *mapasset.Asset
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.catalogs.GetCatalog(gctx, s.opts.Language)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		cat = c
		return nil
	})
	if s.maps != nil {
		g.Go(func() error {
			a, err := s.maps.LoadMap(gctx)
			if err != nil {
				return fmt.Errorf("load map: %w", err)
			}
			asset = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("quiz data failed to load", zap.Error(err))
		s.setStatus(StatusView{State: StatusFailed, Message: loadFailedMessage}, nil)
		return err
	}
	if len(cat.Countries) == 0 {
		err := fmt.Errorf("load catalog: %w", domain.ErrCatalogNotFound)
		s.log.Error("quiz data failed to load", zap.Error(err))
		s.setStatus(StatusView{State: StatusFailed, Message: loadFailedMessage}, nil)
		return err
	}

	data := &quizData{catalog: cat, asset: asset}
	if asset != nil {
		data.mapCountries = catalog.MapCountries(cat, asset)
	}
	took := s.opts.Clock().Sub(started)
	s.opts.Recorder.CatalogLoaded(len(cat.Countries), took)
	s.log.Info("quiz data loaded",
		zap.Int("countries", len(cat.Countries)),
		zap.Int("map_countries", len(data.mapCountries)),
		zap.Duration("took", took),
	)
	s.setStatus(StatusView{
		State:        StatusReady,
		Countries:    len(cat.Countries),
		MapCountries: len(data.mapCountries),
	}, data)
	return nil
}

// Status returns the current readiness.
func (s *QuizService) Status() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Map returns the loaded map, if any.
func (s *QuizService) Map() (*mapasset.Asset, bool) {
	d, err := s.snapshot()
	if err != nil || d.asset == nil {
		return nil, false
	}
	return d.asset, true
}

func (s *QuizService) snapshot() (*quizData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, domain.ErrNotReady
	}
	return s.data, nil
}

func (s *QuizService) setStatus(st StatusView, data *quizData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	if data != nil {
		s.data = data
	}
	for ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			// drop the stale update so a slow reader always sees the latest
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

// SubscribeStatus returns a channel that receives the current status and every
// later change. The caller must invoke cancel to avoid leaks.
func (s *QuizService) SubscribeStatus() (<-chan StatusView, func()) {
	ch := make(chan StatusView, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.status
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// OpenSession creates a session on the start screen.
func (s *QuizService) OpenSession() *Session {
	session := newSession(uuid.NewString(), s)
	s.sessions.Add(session)
	s.opts.Recorder.SessionOpened()
	s.log.Debug("session opened", zap.String("session", session.id))
	return session
}

// Session looks up a live session.
func (s *QuizService) Session(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// CloseSession tears a session down. Unknown ids are ignored.
func (s *QuizService) CloseSession(id string) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	session.close()
	s.sessions.Remove(id)
	s.opts.Recorder.SessionClosed()
	s.log.Debug("session closed", zap.String("session", id))
}

// ActiveSessions reports how many sessions are open.
func (s *QuizService) ActiveSessions() int {
	return s.sessions.Len()
}

// IsSilent reports errors that clients should not be told about.
func IsSilent(err error) bool {
	return errors.Is(err, domain.ErrEmptyAnswer)
}

type toucher interface {
	Touch(ctx context.Context, id string) error
}

// KeepAlive refreshes any external liveness marker kept for the session.
func (s *QuizService) KeepAlive(ctx context.Context, id string) {
	t, ok := s.sessions.(toucher)
	if !ok {
		return
	}
	if err := t.Touch(ctx, id); err != nil {
		s.log.Debug("session keepalive failed", zap.String("session", id), zap.Error(err))
	}
}

package app

import (
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/viewport"
)

// Resize records the rendered size of the map element. It survives question
// changes so every new viewport starts with the right scale.
func (s *Session) Resize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	s.screenW, s.screenH = width, height
	if s.ctrl != nil {
		s.ctrl.Engine().Resize(width, height)
	}
}

// MapView returns the mounted map state.
func (s *Session) MapView() (domain.MapView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return domain.MapView{}, domain.ErrNoMap
	}
	return s.mapViewLocked(), nil
}

// PointerDown starts a mouse gesture on the map.
func (s *Session) PointerDown(button viewport.Button, p viewport.Point) error {
	return s.withMap(func(c *viewport.Controller) bool {
		c.PointerDown(button, p)
		return false
	})
}

// PointerMove pans while dragging. changed reports whether the view moved.
func (s *Session) PointerMove(p viewport.Point) (domain.MapView, bool, error) {
	return s.mapStep(func(c *viewport.Controller) bool {
		return c.PointerMove(p)
	})
}

// PointerUp ends a mouse gesture.
func (s *Session) PointerUp() error {
	return s.withMap(func(c *viewport.Controller) bool {
		c.PointerUp()
		return false
	})
}

// Touch applies the active touch points: one finger does nothing, two pan
// and pinch, none ends the gesture.
func (s *Session) Touch(points []viewport.Point) (domain.MapView, bool, error) {
	return s.mapStep(func(c *viewport.Controller) bool {
		return c.Touch(points)
	})
}

// Wheel starts an animated zoom step toward the cursor.
func (s *Session) Wheel(deltaY float64, p viewport.Point) (bool, error) {
	now := s.now()
	var started bool
	err := s.withMap(func(c *viewport.Controller) bool {
		started = c.Wheel(deltaY, p, now)
		return started
	})
	return started, err
}

// ResetZoom animates the map back to its full extent.
func (s *Session) ResetZoom() error {
	now := s.now()
	return s.withMap(func(c *viewport.Controller) bool {
		c.ResetZoom(now)
		return true
	})
}

// Tick advances the viewport animation. changed is false when nothing is
// animating or no map is mounted.
func (s *Session) Tick(now time.Time) (domain.MapView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil || !s.ctrl.Tick(now) {
		return domain.MapView{}, false
	}
	return s.mapViewLocked(), true
}

// Animating reports whether a viewport animation is in flight.
func (s *Session) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl != nil && s.ctrl.Engine().Animating()
}

func (s *Session) withMap(fn func(*viewport.Controller) bool) error {
	_, _, err := s.mapStep(fn)
	return err
}

func (s *Session) mapStep(fn func(*viewport.Controller) bool) (domain.MapView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != domain.ScreenQuiz || s.ctrl == nil {
		return domain.MapView{}, false, domain.ErrNoMap
	}
	if !fn(s.ctrl) {
		return domain.MapView{}, false, nil
	}
	return s.mapViewLocked(), true, nil
}

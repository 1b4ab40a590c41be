// Package viewport owns the visible rectangle of the map and turns pointer,
// wheel and touch input into pan and zoom operations on it.
package viewport

import (
	"math"
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
)

const (
	DefaultZoomFactor        = 1.2
	MinZoomFactor            = 1.2
	MaxZoomFactor            = 1.25
	DefaultMaxZoom           = 15.0
	DefaultAnimationDuration = 250 * time.Millisecond

	epsilon = 1e-9
)

// Options tunes an Engine. Zero values fall back to the defaults above and
// ZoomFactor is clamped to [MinZoomFactor, MaxZoomFactor].
type Options struct {
	ZoomFactor        float64
	MaxZoom           float64
	AnimationDuration time.Duration
	// ClampPan keeps the centre of the view inside the original rectangle.
	ClampPan bool
}

func (o Options) withDefaults() Options {
	switch {
	case o.ZoomFactor <= 1:
		o.ZoomFactor = DefaultZoomFactor
	case o.ZoomFactor < MinZoomFactor:
		o.ZoomFactor = MinZoomFactor
	case o.ZoomFactor > MaxZoomFactor:
		o.ZoomFactor = MaxZoomFactor
	}
	if o.MaxZoom < 1 {
		o.MaxZoom = DefaultMaxZoom
	}
	if o.AnimationDuration <= 0 {
		o.AnimationDuration = DefaultAnimationDuration
	}
	return o
}

// Engine holds the view rectangle of one mounted map. It is not safe for
// concurrent use; the owning session serializes access.
type Engine struct {
	opts     Options
	original domain.Rect
	view     domain.Rect
	screenW  float64
	screenH  float64
	anim     *animation
}

// New mounts a view initialised to the map's native rectangle.
func New(original domain.Rect, opts Options) *Engine {
	return &Engine{
		opts:     opts.withDefaults(),
		original: original,
		view:     original,
	}
}

// View returns the current rectangle.
func (e *Engine) View() domain.Rect {
	return e.view
}

// Original returns the rectangle the engine was mounted with.
func (e *Engine) Original() domain.Rect {
	return e.original
}

// Zoomed reports whether the view is narrower than the original.
func (e *Engine) Zoomed() bool {
	return e.view.Width < e.original.Width-epsilon
}

// Resize records the rendered pixel size of the map element.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	e.screenW = width
	e.screenH = height
}

// renderedSize falls back to the native size when the client never reported one.
func (e *Engine) renderedSize() (float64, float64) {
	if e.screenW <= 0 || e.screenH <= 0 {
		return e.original.Width, e.original.Height
	}
	return e.screenW, e.screenH
}

func (e *Engine) scale() (float64, float64) {
	w, h := e.renderedSize()
	return e.view.Width / w, e.view.Height / h
}

// ScreenToMap converts a point in rendered pixels to map coordinates.
func (e *Engine) ScreenToMap(sx, sy float64) (float64, float64) {
	kx, ky := e.scale()
	return e.view.X + sx*kx, e.view.Y + sy*ky
}

// Pan moves the view by a screen-space delta. Width and height never change.
func (e *Engine) Pan(dx, dy float64) {
	e.cancel()
	kx, ky := e.scale()
	e.view.X -= dx * kx
	e.view.Y -= dy * ky
	if e.opts.ClampPan {
		e.clampCentre()
	}
}

func (e *Engine) clampCentre() {
	cx := clamp(e.view.X+e.view.Width/2, e.original.X, e.original.X+e.original.Width)
	cy := clamp(e.view.Y+e.view.Height/2, e.original.Y, e.original.Y+e.original.Height)
	e.view.X = cx - e.view.Width/2
	e.view.Y = cy - e.view.Height/2
}

// ZoomAtPoint zooms in for delta < 0 and out for delta > 0, keeping the map
// point under (sx, sy) fixed. It returns false at a zoom limit or for a zero delta.
func (e *Engine) ZoomAtPoint(delta, sx, sy float64) bool {
	target, ok := e.zoomTarget(delta, sx, sy)
	if !ok {
		return false
	}
	e.cancel()
	e.view = target
	return true
}

// SmoothZoomAtPoint computes the same target as ZoomAtPoint and animates to it.
func (e *Engine) SmoothZoomAtPoint(delta, sx, sy float64, now time.Time) bool {
	target, ok := e.zoomTarget(delta, sx, sy)
	if !ok {
		return false
	}
	e.AnimateTo(target, now)
	return true
}

func (e *Engine) zoomTarget(delta, sx, sy float64) (domain.Rect, bool) {
	if delta == 0 || e.view.Width <= 0 {
		return domain.Rect{}, false
	}
	ax, ay := e.ScreenToMap(sx, sy)

	old := e.view
	width := old.Width * e.opts.ZoomFactor
	if delta < 0 {
		width = old.Width / e.opts.ZoomFactor
	}
	width = clamp(width, e.original.Width/e.opts.MaxZoom, e.original.Width)
	if math.Abs(width-old.Width) < epsilon {
		return domain.Rect{}, false
	}

	ratio := width / old.Width
	return domain.Rect{
		X:      ax - (ax-old.X)*ratio,
		Y:      ay - (ay-old.Y)*ratio,
		Width:  width,
		Height: old.Height * ratio,
	}, true
}

// AnimateTo starts a linear transition to target, superseding any running one.
// The new transition starts from wherever the previous one had reached.
func (e *Engine) AnimateTo(target domain.Rect, now time.Time) {
	e.anim = &animation{
		from:     e.view,
		to:       target,
		start:    now,
		duration: e.opts.AnimationDuration,
	}
}

// AnimatedReset animates back to the original rectangle.
func (e *Engine) AnimatedReset(now time.Time) {
	e.AnimateTo(e.original, now)
}

// Animating reports whether a transition is in flight.
func (e *Engine) Animating() bool {
	return e.anim != nil
}

// Tick advances the running transition to now. It reports whether the view changed.
func (e *Engine) Tick(now time.Time) bool {
	if e.anim == nil {
		return false
	}
	rect, done := e.anim.at(now)
	e.view = rect
	if done {
		e.anim = nil
	}
	return true
}

func (e *Engine) cancel() {
	e.anim = nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

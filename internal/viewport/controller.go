package viewport

import (
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// HitTester answers point-in-territory queries in map coordinates.
type HitTester interface {
	TerritoryAt(x, y float64) (string, bool)
}

// ControllerOptions combines the engine and gesture settings of a mounted map.
type ControllerOptions struct {
	Engine                 Options
	PanThreshold           float64
	PinchSensitivity       float64
	WheelRequiresSecondary bool
}

// Controller routes raw input to the gesture machine and the engine.
type Controller struct {
	engine  *Engine
	gesture *Gesture
	hits    HitTester
	opts    ControllerOptions
}

// NewController mounts a map whose native rectangle is original.
func NewController(original domain.Rect, hits HitTester, opts ControllerOptions) *Controller {
	return &Controller{
		engine:  New(original, opts.Engine),
		gesture: NewGesture(opts.PanThreshold, opts.PinchSensitivity),
		hits:    hits,
		opts:    opts,
	}
}

// Engine exposes the underlying view engine.
func (c *Controller) Engine() *Engine {
	return c.engine
}

// Gesture exposes the gesture machine.
func (c *Controller) Gesture() *Gesture {
	return c.gesture
}

// PointerDown starts a mouse gesture.
func (c *Controller) PointerDown(button Button, p Point) {
	c.gesture.PointerDown(button, p)
}

// PointerMove pans when the gesture is dragging; it reports whether the view moved.
func (c *Controller) PointerMove(p Point) bool {
	step := c.gesture.PointerMove(p)
	if !step.Pan {
		return false
	}
	c.engine.Pan(step.PanX, step.PanY)
	return true
}

// PointerUp ends a mouse gesture.
func (c *Controller) PointerUp() {
	c.gesture.PointerUp()
}

// Touch applies a touch update; it reports whether the view moved.
func (c *Controller) Touch(points []Point) bool {
	step := c.gesture.Touch(points)
	changed := false
	if step.Pan {
		c.engine.Pan(step.PanX, step.PanY)
		changed = true
	}
	if step.ZoomDelta != 0 && c.engine.ZoomAtPoint(step.ZoomDelta, step.Anchor.X, step.Anchor.Y) {
		changed = true
	}
	return changed
}

// Wheel zooms toward the cursor with an animated step. deltaY < 0 zooms in.
func (c *Controller) Wheel(deltaY float64, p Point, now time.Time) bool {
	if c.opts.WheelRequiresSecondary && !c.gesture.SecondaryHeld() {
		return false
	}
	return c.engine.SmoothZoomAtPoint(deltaY, p.X, p.Y, now)
}

// ResetZoom animates back to the full map.
func (c *Controller) ResetZoom(now time.Time) {
	c.engine.AnimatedReset(now)
}

// Tick advances any running animation.
func (c *Controller) Tick(now time.Time) bool {
	return c.engine.Tick(now)
}

// Click resolves a click at a screen point to a territory. ok is false when
// the click belongs to a drag or hits no territory.
func (c *Controller) Click(p Point) (string, bool) {
	if !c.gesture.AllowClick() {
		return "", false
	}
	return c.HitTest(p)
}

// HitTest returns the territory under a screen point.
func (c *Controller) HitTest(p Point) (string, bool) {
	if c.hits == nil {
		return "", false
	}
	x, y := c.engine.ScreenToMap(p.X, p.Y)
	return c.hits.TerritoryAt(x, y)
}

// Release drops any in-progress gesture, e.g. when the map is torn down.
func (c *Controller) Release() {
	c.gesture.Reset()
}

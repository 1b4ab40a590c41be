package viewport

import "math"

const (
	DefaultPanThreshold     = 3.0
	DefaultPinchSensitivity = 0.05
)

// State is the phase of the gesture state machine.
type State int

const (
	Idle State = iota
	Armed
	Panning
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Panning:
		return "panning"
	default:
		return "idle"
	}
}

// Button numbers follow the DOM MouseEvent.button convention.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

// Point is a position in rendered pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step is what one input event asks the view to do.
type Step struct {
	PanX, PanY float64
	Pan        bool
	// ZoomDelta is non-zero when a pinch crossed a whole zoom step; the sign follows ZoomAtPoint.
	ZoomDelta float64
	Anchor    Point
}

// Gesture separates clicks from drags and tracks pinch distance for a single map.
type Gesture struct {
	threshold   float64
	sensitivity float64

	state    State
	touch    bool
	origin   Point
	last     Point
	pinch    float64
	pinchAcc float64
	// suppressClick swallows the click that the host fires right after a drag ends.
	suppressClick bool
}

// NewGesture returns an idle gesture machine. Non-positive arguments use the defaults.
func NewGesture(threshold, sensitivity float64) *Gesture {
	if threshold <= 0 {
		threshold = DefaultPanThreshold
	}
	if sensitivity <= 0 {
		sensitivity = DefaultPinchSensitivity
	}
	return &Gesture{threshold: threshold, sensitivity: sensitivity}
}

// State returns the current phase.
func (g *Gesture) State() State {
	return g.state
}

// SecondaryHeld reports whether a mouse gesture armed by the secondary button is in progress.
func (g *Gesture) SecondaryHeld() bool {
	return g.state != Idle && !g.touch
}

// PointerDown arms the machine for the secondary button; other buttons only start a click.
func (g *Gesture) PointerDown(button Button, p Point) {
	g.suppressClick = false
	if button != ButtonSecondary {
		return
	}
	g.state = Armed
	g.touch = false
	g.origin = p
	g.last = p
}

// PointerMove returns the pan step for a mouse move, if any.
func (g *Gesture) PointerMove(p Point) Step {
	if g.state == Idle || g.touch {
		return Step{}
	}
	if g.state == Armed && !g.beyondThreshold(p) {
		return Step{}
	}
	g.state = Panning
	step := Step{PanX: p.X - g.last.X, PanY: p.Y - g.last.Y, Pan: true}
	g.last = p
	return step
}

// PointerUp ends a mouse gesture.
func (g *Gesture) PointerUp() {
	g.end()
}

// Touch consumes the full list of active touch points after a touch event.
func (g *Gesture) Touch(points []Point) Step {
	switch {
	case len(points) == 0:
		g.end()
		return Step{}
	case len(points) == 1:
		// A lifted finger stops the pinch but the gesture only ends when all fingers are up.
		g.pinch = 0
		g.pinchAcc = 0
		return Step{}
	}

	mid, dist := pinchGeometry(points[0], points[1])
	if g.state == Idle || !g.touch {
		g.suppressClick = false
		g.state = Armed
		g.touch = true
		g.origin = mid
		g.last = mid
		g.pinch = dist
		return Step{}
	}
	if g.pinch == 0 {
		g.pinch = dist
		g.last = mid
		return Step{}
	}
	if g.state == Armed && !g.beyondThreshold(mid) && math.Abs(dist-g.pinch) <= g.threshold {
		return Step{}
	}
	g.state = Panning

	step := Step{PanX: mid.X - g.last.X, PanY: mid.Y - g.last.Y, Anchor: mid}
	step.Pan = step.PanX != 0 || step.PanY != 0

	g.pinchAcc += (g.pinch - dist) * g.sensitivity
	if math.Abs(g.pinchAcc) >= 1 {
		step.ZoomDelta = math.Copysign(1, g.pinchAcc)
		g.pinchAcc = 0
	}
	g.pinch = dist
	g.last = mid
	return step
}

// AllowClick reports whether a click may count as an answer. It consumes the
// post-drag suppression so only the click right after a drag is swallowed.
func (g *Gesture) AllowClick() bool {
	if g.state == Panning {
		return false
	}
	if g.suppressClick {
		g.suppressClick = false
		return false
	}
	return true
}

// Reset returns to Idle. It is safe to call in any state.
func (g *Gesture) Reset() {
	g.state = Idle
	g.touch = false
	g.pinch = 0
	g.pinchAcc = 0
	g.suppressClick = false
}

func (g *Gesture) end() {
	wasPanning := g.state == Panning
	g.Reset()
	g.suppressClick = wasPanning
}

func (g *Gesture) beyondThreshold(p Point) bool {
	return math.Abs(p.X-g.origin.X) > g.threshold || math.Abs(p.Y-g.origin.Y) > g.threshold
}

func pinchGeometry(a, b Point) (Point, float64) {
	mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return mid, math.Hypot(b.X-a.X, b.Y-a.Y)
}

package mapasset

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// curveSegments is the number of line segments used to flatten one Bézier curve.
	curveSegments = 8
	// arcStep is the largest angle swept by one segment of a flattened arc.
	arcStep = math.Pi / 16
)

// Point is a position in map coordinates.
type Point struct {
	X, Y float64
}

// flattenPath converts SVG path data into closed polygon rings. Bézier curves
// and elliptical arcs are sampled into line segments.
func flattenPath(d string) ([][]Point, error) {
	f := &flattener{scan: pathScanner{s: d}}
	if err := f.run(); err != nil {
		return nil, err
	}
	return f.rings, nil
}

type flattener struct {
	scan  pathScanner
	rings [][]Point
	ring  []Point
	cur   Point
	start Point
	// ctrl is the last control point, for the S and T shorthands.
	ctrl    Point
	hasCtrl bool
}

func (f *flattener) run() error {
	for {
		f.scan.skipSep()
		if f.scan.done() {
			break
		}
		cmd, ok := f.scan.command()
		if !ok {
			return fmt.Errorf("path data: expected command at offset %d", f.scan.i)
		}
		if cmd == 'Z' || cmd == 'z' {
			f.closePath()
			continue
		}
		for {
			if err := f.apply(cmd); err != nil {
				return err
			}
			if !f.scan.hasNumber() {
				break
			}
			// Extra coordinate pairs after a moveto are implicit linetos.
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			}
		}
	}
	f.flush()
	return nil
}

func (f *flattener) apply(cmd byte) error {
	rel := cmd >= 'a'
	base := Point{}
	if rel {
		base = f.cur
	}
	upper := cmd &^ 0x20

	switch upper {
	case 'M':
		p, err := f.point(base)
		if err != nil {
			return err
		}
		f.flush()
		f.cur, f.start = p, p
		f.hasCtrl = false
	case 'L':
		p, err := f.point(base)
		if err != nil {
			return err
		}
		f.lineTo(p)
		f.hasCtrl = false
	case 'H':
		x, err := f.scan.number()
		if err != nil {
			return err
		}
		if rel {
			x += f.cur.X
		}
		f.lineTo(Point{X: x, Y: f.cur.Y})
		f.hasCtrl = false
	case 'V':
		y, err := f.scan.number()
		if err != nil {
			return err
		}
		if rel {
			y += f.cur.Y
		}
		f.lineTo(Point{X: f.cur.X, Y: y})
		f.hasCtrl = false
	case 'C':
		pts, err := f.points(base, 3)
		if err != nil {
			return err
		}
		f.cubic(pts[0], pts[1], pts[2])
	case 'S':
		pts, err := f.points(base, 2)
		if err != nil {
			return err
		}
		f.cubic(f.reflect(), pts[0], pts[1])
	case 'Q':
		pts, err := f.points(base, 2)
		if err != nil {
			return err
		}
		f.quadratic(pts[0], pts[1])
	case 'T':
		p, err := f.point(base)
		if err != nil {
			return err
		}
		f.quadratic(f.reflect(), p)
	case 'A':
		var params [3]float64
		for i := range params {
			v, err := f.scan.number()
			if err != nil {
				return err
			}
			params[i] = v
		}
		large, err := f.scan.flag()
		if err != nil {
			return err
		}
		sweep, err := f.scan.flag()
		if err != nil {
			return err
		}
		p, err := f.point(base)
		if err != nil {
			return err
		}
		f.arc(params[0], params[1], params[2], large, sweep, p)
		f.hasCtrl = false
	default:
		return fmt.Errorf("path data: unsupported command %q", cmd)
	}
	return nil
}

func (f *flattener) point(base Point) (Point, error) {
	x, err := f.scan.number()
	if err != nil {
		return Point{}, err
	}
	y, err := f.scan.number()
	if err != nil {
		return Point{}, err
	}
	return Point{X: base.X + x, Y: base.Y + y}, nil
}

func (f *flattener) points(base Point, n int) ([]Point, error) {
	pts := make([]Point, n)
	for i := range pts {
		p, err := f.point(base)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}
	return pts, nil
}

func (f *flattener) reflect() Point {
	if !f.hasCtrl {
		return f.cur
	}
	return Point{X: 2*f.cur.X - f.ctrl.X, Y: 2*f.cur.Y - f.ctrl.Y}
}

func (f *flattener) cubic(c1, c2, end Point) {
	p0 := f.cur
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		mt := 1 - t
		a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
		f.lineTo(Point{
			X: a*p0.X + b*c1.X + c*c2.X + d*end.X,
			Y: a*p0.Y + b*c1.Y + c*c2.Y + d*end.Y,
		})
	}
	f.ctrl, f.hasCtrl = c2, true
}

func (f *flattener) quadratic(c1, end Point) {
	p0 := f.cur
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		mt := 1 - t
		a, b, c := mt*mt, 2*mt*t, t*t
		f.lineTo(Point{
			X: a*p0.X + b*c1.X + c*end.X,
			Y: a*p0.Y + b*c1.Y + c*end.Y,
		})
	}
	f.ctrl, f.hasCtrl = c1, true
}

// arc samples an elliptical arc using the endpoint to centre conversion of
// SVG 1.1 appendix F.6.5. Out-of-range radii are scaled up; a zero radius
// degrades to a straight line.
func (f *flattener) arc(rx, ry, angle float64, large, sweep bool, end Point) {
	start := f.cur
	if start == end {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		f.lineTo(end)
		return
	}

	sinPhi, cosPhi := math.Sincos(angle * math.Pi / 180)
	dx, dy := (start.X-end.X)/2, (start.Y-end.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math.Sqrt(math.Max(0, num/den))
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	cx := cosPhi*cx1 - sinPhi*cy1 + (start.X+end.X)/2
	cy := sinPhi*cx1 + cosPhi*cy1 + (start.Y+end.Y)/2

	theta := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	delta := math.Atan2((-y1-cy1)/ry, (-x1-cx1)/rx) - theta
	switch {
	case sweep && delta < 0:
		delta += 2 * math.Pi
	case !sweep && delta > 0:
		delta -= 2 * math.Pi
	}

	n := int(math.Ceil(math.Abs(delta) / arcStep))
	for i := 1; i < n; i++ {
		t := theta + delta*float64(i)/float64(n)
		sinT, cosT := math.Sincos(t)
		f.lineTo(Point{
			X: cosPhi*rx*cosT - sinPhi*ry*sinT + cx,
			Y: sinPhi*rx*cosT + cosPhi*ry*sinT + cy,
		})
	}
	f.lineTo(end)
}

func (f *flattener) lineTo(p Point) {
	if len(f.ring) == 0 {
		f.ring = append(f.ring, f.cur)
	}
	f.ring = append(f.ring, p)
	f.cur = p
}

func (f *flattener) closePath() {
	f.flush()
	f.cur = f.start
	f.hasCtrl = false
}

func (f *flattener) flush() {
	if len(f.ring) >= 3 {
		f.rings = append(f.rings, f.ring)
	}
	f.ring = nil
}

type pathScanner struct {
	s string
	i int
}

func (p *pathScanner) done() bool {
	return p.i >= len(p.s)
}

func (p *pathScanner) skipSep() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			p.i++
		default:
			return
		}
	}
}

func (p *pathScanner) command() (byte, bool) {
	c := p.s[p.i]
	if (c >= 'a' && c <= 'z' && c != 'e') || (c >= 'A' && c <= 'Z' && c != 'E') {
		p.i++
		return c, true
	}
	return 0, false
}

func (p *pathScanner) hasNumber() bool {
	p.skipSep()
	if p.done() {
		return false
	}
	c := p.s[p.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (p *pathScanner) number() (float64, error) {
	p.skipSep()
	start := p.i
	if p.i < len(p.s) && (p.s[p.i] == '-' || p.s[p.i] == '+') {
		p.i++
	}
	digits := p.digits()
	if p.i < len(p.s) && p.s[p.i] == '.' {
		p.i++
		digits += p.digits()
	}
	if digits == 0 {
		return 0, fmt.Errorf("path data: expected number at offset %d", start)
	}
	if p.i < len(p.s) && (p.s[p.i] == 'e' || p.s[p.i] == 'E') {
		mark := p.i
		p.i++
		if p.i < len(p.s) && (p.s[p.i] == '-' || p.s[p.i] == '+') {
			p.i++
		}
		if p.digits() == 0 {
			p.i = mark
		}
	}
	v, err := strconv.ParseFloat(p.s[start:p.i], 64)
	if err != nil {
		return 0, fmt.Errorf("path data: %w", err)
	}
	return v, nil
}

// flag reads an arc flag, which may be written without a separator ("a1 1 0 01 5 5").
func (p *pathScanner) flag() (bool, error) {
	p.skipSep()
	if p.done() {
		return false, fmt.Errorf("path data: expected flag at offset %d", p.i)
	}
	switch p.s[p.i] {
	case '0':
		p.i++
		return false, nil
	case '1':
		p.i++
		return true, nil
	}
	return false, fmt.Errorf("path data: expected flag at offset %d", p.i)
}

func (p *pathScanner) digits() int {
	n := 0
	for p.i < len(p.s) && p.s[p.i] >= '0' && p.s[p.i] <= '9' {
		p.i++
		n++
	}
	return n
}

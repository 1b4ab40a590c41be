// Package mapasset parses the world map SVG into territories keyed by their
// lowercase code and answers hit tests and annotation requests against them.
package mapasset

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// ErrNoViewBox is returned when the document declares neither a viewBox nor a width and height.
var ErrNoViewBox = errors.New("svg has no viewBox")

// BBox is an axis-aligned bounding box in map coordinates.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BBox) Width() float64  { return b.MaxX - b.MinX }
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

func (b BBox) contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Territory is one path or group element of the map.
type Territory struct {
	ID    string
	Kind  string
	Rings [][]Point
	BBox  BBox

	parent *Territory
	boxed  bool
}

func (t *Territory) addRings(rings [][]Point) {
	for _, ring := range rings {
		for _, p := range ring {
			if !t.boxed {
				t.BBox = BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
				t.boxed = true
				continue
			}
			t.BBox.MinX = min(t.BBox.MinX, p.X)
			t.BBox.MinY = min(t.BBox.MinY, p.Y)
			t.BBox.MaxX = max(t.BBox.MaxX, p.X)
			t.BBox.MaxY = max(t.BBox.MaxY, p.Y)
		}
		t.Rings = append(t.Rings, ring)
	}
}

// Contains applies the even-odd rule over all rings of the territory.
func (t *Territory) Contains(x, y float64) bool {
	if len(t.Rings) == 0 || !t.BBox.contains(x, y) {
		return false
	}
	inside := false
	for _, ring := range t.Rings {
		if pointInRing(x, y, ring) {
			inside = !inside
		}
	}
	return inside
}

// Asset is a parsed, read-only map document. Per-question state lives in Overlay.
type Asset struct {
	viewBox     domain.Rect
	territories []*Territory
	byID        map[string]*Territory
	raw         []byte
}

// Load reads and parses an SVG file.
func Load(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	return Parse(data)
}

// Parse builds an Asset from SVG bytes. Every path, polygon or group with an
// id becomes a territory. A shape's rings belong to its innermost identified
// element and to every identified group around it, so a country nested in a
// continent group is its own territory and the group still covers it.
func Parse(data []byte) (*Asset, error) {
	a := &Asset{
		byID: make(map[string]*Territory),
		raw:  data,
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		rootSeen bool
		stack    []*Territory // enclosing territory per open element, nil when none
		skip     int          // depth inside defs/clipPath/mask
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse map: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			var owner *Territory
			if len(stack) > 0 {
				owner = stack[len(stack)-1]
			}
			name := el.Name.Local
			if !rootSeen {
				if name != "svg" {
					return nil, fmt.Errorf("parse map: root element is <%s>, want <svg>", name)
				}
				rootSeen = true
				vb, err := rootViewBox(el)
				if err != nil {
					return nil, err
				}
				a.viewBox = vb
				stack = append(stack, nil)
				continue
			}
			if skip > 0 || name == "defs" || name == "clipPath" || name == "mask" || name == "symbol" {
				skip++
				stack = append(stack, owner)
				continue
			}

			id := strings.ToLower(strings.TrimSpace(attr(el, "id")))
			if id != "" && (name == "g" || name == "path" || name == "polygon") {
				if _, dup := a.byID[id]; !dup {
					owner = &Territory{ID: id, Kind: name, parent: owner}
					a.byID[id] = owner
					a.territories = append(a.territories, owner)
				}
			}
			if owner != nil {
				rings, err := shapeRings(el)
				if err != nil {
					return nil, fmt.Errorf("parse map: element %q: %w", id, err)
				}
				for t := owner; t != nil; t = t.parent {
					t.addRings(rings)
				}
			}
			stack = append(stack, owner)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if skip > 0 {
				skip--
			}
		}
	}
	if !rootSeen {
		return nil, errors.New("parse map: empty document")
	}
	return a, nil
}

// ViewBox returns the declared native rectangle.
func (a *Asset) ViewBox() domain.Rect {
	return a.viewBox
}

// Raw returns the original document bytes.
func (a *Asset) Raw() []byte {
	return a.raw
}

// Territory looks up a territory by code, case-insensitively.
func (a *Asset) Territory(id string) (*Territory, bool) {
	t, ok := a.byID[strings.ToLower(id)]
	return t, ok
}

// Has reports whether the map contains a territory for id.
func (a *Asset) Has(id string) bool {
	_, ok := a.Territory(id)
	return ok
}

// IDs lists territory codes in document order.
func (a *Asset) IDs() []string {
	ids := make([]string, 0, len(a.territories))
	for _, t := range a.territories {
		ids = append(ids, t.ID)
	}
	return ids
}

// TerritoryAt returns the topmost territory containing the map point.
func (a *Asset) TerritoryAt(x, y float64) (string, bool) {
	// Later elements paint over earlier ones and nested elements come after
	// their group, so the innermost territory wins.
	for i := len(a.territories) - 1; i >= 0; i-- {
		if a.territories[i].Contains(x, y) {
			return a.territories[i].ID, true
		}
	}
	return "", false
}

func rootViewBox(el xml.StartElement) (domain.Rect, error) {
	if raw := attr(el, "viewBox"); raw != "" {
		fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
		if len(fields) != 4 {
			return domain.Rect{}, fmt.Errorf("parse map: malformed viewBox %q", raw)
		}
		var v [4]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return domain.Rect{}, fmt.Errorf("parse map: malformed viewBox %q: %w", raw, err)
			}
			v[i] = n
		}
		if v[2] <= 0 || v[3] <= 0 {
			return domain.Rect{}, fmt.Errorf("parse map: non-positive viewBox %q", raw)
		}
		return domain.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
	}

	w, werr := parseLength(attr(el, "width"))
	h, herr := parseLength(attr(el, "height"))
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return domain.Rect{}, ErrNoViewBox
	}
	return domain.Rect{Width: w, Height: h}, nil
}

func parseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	return strconv.ParseFloat(s, 64)
}

func shapeRings(el xml.StartElement) ([][]Point, error) {
	switch el.Name.Local {
	case "path":
		return flattenPath(attr(el, "d"))
	case "polygon":
		return polygonRings(attr(el, "points"))
	}
	return nil, nil
}

func polygonRings(points string) ([][]Point, error) {
	scan := pathScanner{s: points}
	var ring []Point
	for scan.hasNumber() {
		x, err := scan.number()
		if err != nil {
			return nil, err
		}
		y, err := scan.number()
		if err != nil {
			return nil, err
		}
		ring = append(ring, Point{X: x, Y: y})
	}
	if len(ring) < 3 {
		return nil, nil
	}
	return [][]Point{ring}, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// pointInRing is the ray casting test against a closed ring.
func pointInRing(x, y float64, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

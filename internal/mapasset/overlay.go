package mapasset

import (
	"math"
	"strconv"
	"strings"
)

// Overlay is the per-question markup drawn on top of a shared Asset. A fresh
// overlay is created for every question so marks never leak between them.
type Overlay struct {
	asset *Asset
	marks map[string]string
	arrow string
}

// NewOverlay returns an empty overlay bound to the asset.
func (a *Asset) NewOverlay() *Overlay {
	return &Overlay{asset: a, marks: make(map[string]string)}
}

// Mark sets a class-like mark on a territory. It reports false, and does
// nothing, when the map has no such territory.
func (o *Overlay) Mark(id, mark string) bool {
	t, ok := o.asset.Territory(id)
	if !ok {
		return false
	}
	o.marks[t.ID] = mark
	return true
}

// PointAt places a downward arrow above the territory's bounding box.
func (o *Overlay) PointAt(id string) bool {
	t, ok := o.asset.Territory(id)
	if !ok {
		return false
	}
	o.arrow = ArrowPath(t.BBox)
	return true
}

// Marks returns a copy of the current marks keyed by territory id.
func (o *Overlay) Marks() map[string]string {
	out := make(map[string]string, len(o.marks))
	for k, v := range o.marks {
		out[k] = v
	}
	return out
}

// Arrow returns the path data of the pointer arrow, or "".
func (o *Overlay) Arrow() string {
	return o.arrow
}

// ArrowPath returns an isosceles triangle whose tip sits just above the box centre.
func ArrowPath(b BBox) string {
	size := math.Min(math.Min(b.Width(), b.Height()), 20) + 15
	tipX := b.MinX + b.Width()/2
	tipY := b.MinY - size/2

	var sb strings.Builder
	sb.WriteString("M ")
	sb.WriteString(num(tipX))
	sb.WriteString(" ")
	sb.WriteString(num(tipY))
	sb.WriteString(" l ")
	sb.WriteString(num(-size / 2))
	sb.WriteString(" ")
	sb.WriteString(num(-size))
	sb.WriteString(" h ")
	sb.WriteString(num(size))
	sb.WriteString(" z")
	return sb.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

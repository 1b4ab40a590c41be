package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tg383520/geo-quiz/internal/domain"
)

var worldRect = domain.Rect{X: 0, Y: 0, Width: 2000, Height: 1000}

func TestZoomStaysWithinBounds(t *testing.T) {
	e := New(worldRect, Options{})
	e.Resize(1000, 500)

	for i := 0; i < 40; i++ {
		e.ZoomAtPoint(-1, 300, 200)
		assert.GreaterOrEqual(t, e.View().Width, worldRect.Width/DefaultMaxZoom-epsilon)
	}
	assert.InDelta(t, worldRect.Width/DefaultMaxZoom, e.View().Width, 1e-6)

	before := e.View()
	assert.False(t, e.ZoomAtPoint(-1, 300, 200), "zoom past the limit must be a no-op")
	assert.Equal(t, before, e.View())

	for i := 0; i < 40; i++ {
		e.ZoomAtPoint(1, 700, 100)
		assert.LessOrEqual(t, e.View().Width, worldRect.Width+epsilon)
	}
	assert.InDelta(t, worldRect.Width, e.View().Width, 1e-6)
	assert.False(t, e.ZoomAtPoint(1, 0, 0))
	assert.False(t, e.Zoomed())
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	e := New(worldRect, Options{})
	e.Resize(800, 400)

	anchors := []Point{{X: 0, Y: 0}, {X: 123, Y: 321}, {X: 799, Y: 1}, {X: 400, Y: 200}}
	for _, a := range anchors {
		bx, by := e.ScreenToMap(a.X, a.Y)
		require.True(t, e.ZoomAtPoint(-1, a.X, a.Y))
		ax, ay := e.ScreenToMap(a.X, a.Y)
		assert.InDelta(t, bx, ax, 1e-9)
		assert.InDelta(t, by, ay, 1e-9)
	}
}

func TestZoomPreservesAspectRatio(t *testing.T) {
	e := New(worldRect, Options{ZoomFactor: 1.25})
	e.ZoomAtPoint(-1, 10, 10)
	e.ZoomAtPoint(-1, 500, 900)
	e.ZoomAtPoint(1, 40, 40)

	v := e.View()
	assert.InDelta(t, worldRect.Width/worldRect.Height, v.Width/v.Height, 1e-9)
}

func TestZoomFactorIsClamped(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, DefaultZoomFactor},
		{1, DefaultZoomFactor},
		{1.1, MinZoomFactor},
		{1.22, 1.22},
		{2, MaxZoomFactor},
	}
	for _, tc := range cases {
		e := New(worldRect, Options{ZoomFactor: tc.in})
		require.True(t, e.ZoomAtPoint(-1, 0, 0))
		assert.InDelta(t, worldRect.Width/tc.want, e.View().Width, 1e-9, "zoom factor %v", tc.in)
	}
}

func TestZeroDeltaIsNoOp(t *testing.T) {
	e := New(worldRect, Options{})
	assert.False(t, e.ZoomAtPoint(0, 10, 10))
	assert.Equal(t, worldRect, e.View())
}

func TestPanOnlyTranslates(t *testing.T) {
	e := New(worldRect, Options{})
	e.Resize(1000, 500)
	e.ZoomAtPoint(-1, 500, 250)
	before := e.View()

	e.Pan(50, -20)
	after := e.View()

	assert.Equal(t, before.Width, after.Width)
	assert.Equal(t, before.Height, after.Height)
	kx := before.Width / 1000
	ky := before.Height / 500
	assert.InDelta(t, before.X-50*kx, after.X, 1e-9)
	assert.InDelta(t, before.Y+20*ky, after.Y, 1e-9)
}

func TestPanClampKeepsCentreOnMap(t *testing.T) {
	e := New(worldRect, Options{ClampPan: true})
	e.Resize(1000, 500)
	e.ZoomAtPoint(-1, 500, 250)
	width := e.View().Width

	e.Pan(1e6, 1e6)
	v := e.View()
	assert.Equal(t, width, v.Width)
	assert.InDelta(t, worldRect.X, v.X+v.Width/2, 1e-9)
	assert.InDelta(t, worldRect.Y, v.Y+v.Height/2, 1e-9)

	unclamped := New(worldRect, Options{})
	unclamped.Pan(-1e6, 0)
	assert.Greater(t, unclamped.View().X, worldRect.Width)
}

func TestAnimatedResetInterpolatesLinearly(t *testing.T) {
	e := New(worldRect, Options{})
	e.ZoomAtPoint(-1, 0, 0)
	zoomed := e.View()

	start := time.Unix(100, 0)
	e.AnimatedReset(start)
	require.True(t, e.Animating())

	require.True(t, e.Tick(start.Add(125*time.Millisecond)))
	half := e.View()
	assert.InDelta(t, (zoomed.Width+worldRect.Width)/2, half.Width, 1e-9)
	assert.InDelta(t, (zoomed.X+worldRect.X)/2, half.X, 1e-9)

	require.True(t, e.Tick(start.Add(250*time.Millisecond)))
	assert.Equal(t, worldRect, e.View())
	assert.False(t, e.Animating())
	assert.False(t, e.Tick(start.Add(time.Second)))
}

func TestNewAnimationSupersedesRunningOne(t *testing.T) {
	e := New(worldRect, Options{})
	start := time.Unix(100, 0)
	first := domain.Rect{X: 1000, Y: 500, Width: 200, Height: 100}
	e.AnimateTo(first, start)
	e.Tick(start.Add(100 * time.Millisecond))
	reached := e.View()

	second := domain.Rect{X: 0, Y: 0, Width: 1000, Height: 500}
	e.AnimateTo(second, start.Add(100*time.Millisecond))
	assert.Equal(t, reached, e.View(), "cancel leaves the interpolated value in place")

	e.Tick(start.Add(350 * time.Millisecond))
	assert.Equal(t, second, e.View())
	assert.False(t, e.Animating())
}

func TestImmediateZoomCancelsAnimation(t *testing.T) {
	e := New(worldRect, Options{})
	now := time.Unix(1, 0)
	require.True(t, e.SmoothZoomAtPoint(-1, 10, 10, now))
	require.True(t, e.Animating())

	e.ZoomAtPoint(-1, 10, 10)
	assert.False(t, e.Animating())
}

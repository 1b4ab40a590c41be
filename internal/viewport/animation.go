package viewport

import (
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
)

type animation struct {
	from     domain.Rect
	to       domain.Rect
	start    time.Time
	duration time.Duration
}

// at interpolates linearly between from and to; done is true once the duration elapsed.
func (a *animation) at(now time.Time) (domain.Rect, bool) {
	elapsed := now.Sub(a.start)
	if elapsed < 0 {
		elapsed = 0
	}
	progress := 1.0
	if a.duration > 0 {
		progress = float64(elapsed) / float64(a.duration)
	}
	if progress >= 1 {
		return a.to, true
	}
	return domain.Rect{
		X:      lerp(a.from.X, a.to.X, progress),
		Y:      lerp(a.from.Y, a.to.Y, progress),
		Width:  lerp(a.from.Width, a.to.Width, progress),
		Height: lerp(a.from.Height, a.to.Height, progress),
	}, false
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

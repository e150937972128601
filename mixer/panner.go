package mixer

import (
	"github.com/chewxy/math32"

	"github.com/sqrew/tunes-sub001/dsp"
	"github.com/sqrew/tunes-sub001/music"
)

// panGains converts a pan position p in [0,1] (0 left, 0.5 center, 1 right)
// to equal-power channel gains.
func panGains(p float32) (l, r float32) {
	p = dsp.Clamp(p, 0, 1)
	return math32.Cos(p * math32.Pi / 2), math32.Sin(p * math32.Pi / 2)
}

// spatialGains derives equal-power gains and a distance attenuation from a
// 3-D position. The listener sits at the origin facing +Y; azimuth maps the
// X/Y angle onto the pan axis and gain falls off with inverse distance.
func spatialGains(pos *music.Position) (l, r float32) {
	dist := math32.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	atten := float32(1)
	if dist > 1 {
		atten = 1 / dist
	}

	// Azimuth in [-π/2, π/2] maps to pan [0, 1].
	az := math32.Atan2(pos.X, math32.Abs(pos.Y))
	p := 0.5 + az/math32.Pi
	l, r = panGains(p)
	return l * atten, r * atten
}

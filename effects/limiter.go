package effects

import "github.com/chewxy/math32"

// Limiter is a hard peak limiter with instantaneous attack and smoothed
// release. The gain drops immediately to keep |out| at or under the
// threshold and recovers toward unity with the release time constant.
type Limiter struct {
	threshold autoParam
	release   autoParam

	gain         float32
	releaseCoeff float32
	coeffRate    int
	coeffRelease float32
}

// NewLimiter builds a limiter with threshold as linear amplitude and release
// time in seconds.
func NewLimiter(threshold, release float32) *Limiter {
	l := &Limiter{gain: 1}
	l.threshold.set(clampParam("limiter threshold", threshold, 1e-3, 2))
	l.release.set(clampParam("limiter release", release, 0, 5))
	return l
}

// AutomateThreshold attaches an automation curve to the threshold.
func (l *Limiter) AutomateThreshold(a *Automation) { l.threshold.curve = a }

func (l *Limiter) Priority() int { return PriorityLimiter }

func (l *Limiter) refresh(t float32) {
	l.threshold.refresh(t)
	l.release.refresh(t)
}

func (l *Limiter) ensureCoeffs(sampleRate int) {
	if l.coeffRate == sampleRate && l.coeffRelease == l.release.value {
		return
	}
	l.releaseCoeff = envCoeff(l.release.value, sampleRate)
	l.coeffRate = sampleRate
	l.coeffRelease = l.release.value
}

// step advances the gain state for peak level d and returns the gain.
func (l *Limiter) step(d float32) float32 {
	th := l.threshold.value
	if d*l.gain > th && d > 0 {
		l.gain = th / d
	} else {
		// Recover toward unity.
		l.gain = 1 + l.releaseCoeff*(l.gain-1)
	}
	return l.gain
}

func (l *Limiter) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		l.refresh(t)
	}
	l.ensureCoeffs(sampleRate)
	return x * l.step(math32.Abs(x))
}

func (l *Limiter) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return l.Process(x, sampleRate, t, n, 0)
	})
}

// ProcessStereo applies stereo-linked limiting: one gain from the peak of
// both channels, applied to both.
func (l *Limiter) ProcessStereo(left, right []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	dt := 1 / float32(sampleRate)
	for i := range left {
		n := n0 + uint64(i)
		if n&automationMask == 0 {
			l.refresh(t0 + float32(i)*dt)
		}
		l.ensureCoeffs(sampleRate)

		d := math32.Abs(left[i])
		if ar := math32.Abs(right[i]); ar > d {
			d = ar
		}
		g := l.step(d)
		left[i] *= g
		right[i] *= g
	}
}

func (l *Limiter) Reset() {
	l.gain = 1
}

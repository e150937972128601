package dsp

import "math"

// SVFMode selects which output of the state-variable filter is taken.
type SVFMode int

const (
	SVFLowpass SVFMode = iota
	SVFHighpass
	SVFBandpass
	SVFNotch
)

// SVF is a Chamberlin state-variable filter. Cutoff changes are cheap, which
// makes it the right topology for envelope-modulated voice filters.
type SVF struct {
	mode SVFMode
	f    float32 // frequency coefficient, 2*sin(pi*fc/fs)
	q    float32 // damping, 1/Q

	low  float32
	band float32
}

// NewSVF creates a state-variable filter.
func NewSVF(mode SVFMode, cutoff, resonance float32, sampleRate int) *SVF {
	s := &SVF{mode: mode}
	s.SetCutoff(cutoff, sampleRate)
	s.SetResonance(resonance)
	return s
}

// SetCutoff retunes the filter. Stable up to roughly sampleRate/6.
func (s *SVF) SetCutoff(cutoff float32, sampleRate int) {
	if cutoff < 1 {
		cutoff = 1
	}
	maxCutoff := float32(sampleRate) / 6
	if cutoff > maxCutoff {
		cutoff = maxCutoff
	}
	// Exact sine form keeps f <= 1 at the fs/6 clamp; the linear
	// approximation overshoots past the stability bound there.
	s.f = 2 * float32(math.Sin(math.Pi*float64(cutoff)/float64(sampleRate)))
}

// SetResonance sets resonance in [0,1); higher values ring longer.
func (s *SVF) SetResonance(resonance float32) {
	res := Clamp(resonance, 0, 0.99)
	s.q = 2 * (1 - res)
	if s.q < 0.05 {
		s.q = 0.05
	}
}

// SetMode changes which response the filter outputs.
func (s *SVF) SetMode(mode SVFMode) {
	s.mode = mode
}

// Process filters one sample.
func (s *SVF) Process(x float32) float32 {
	s.low += s.f * s.band
	high := x - s.low - s.q*s.band
	s.band += s.f * high
	s.low = FlushDenormals(s.low)
	s.band = FlushDenormals(s.band)

	switch s.mode {
	case SVFHighpass:
		return high
	case SVFBandpass:
		return s.band
	case SVFNotch:
		return high + s.low
	default:
		return s.low
	}
}

// Reset clears the filter state
func (s *SVF) Reset() {
	s.low, s.band = 0, 0
}

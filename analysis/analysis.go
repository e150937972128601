// Package analysis provides offline measurements over rendered PCM: RMS and
// peak levels and FFT magnitude spectra. It backs the engine's tests and the
// render CLI's level report.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"

	"github.com/sqrew/tunes-sub001/internal/simd"
)

// RMS returns the root-mean-square level of a mono signal.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	return float32(math.Sqrt(float64(simd.MeanSquare(samples))))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	return simd.Peak(samples)
}

// DB converts a linear magnitude ratio to decibels.
func DB(ratio float64) float64 {
	if ratio <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(ratio)
}

// Spectrum is the magnitude spectrum of a windowed signal.
type Spectrum struct {
	Mags  []float64 // one magnitude per bin, DC through Nyquist
	BinHz float64
}

// Analyze computes the Hann-windowed magnitude spectrum of a mono signal.
// The FFT size is the signal length rounded down to a power of two.
func Analyze(samples []float32, sampleRate int) (*Spectrum, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("analysis: nothing to analyze")
	}
	fftSize := 1
	for fftSize*2 <= len(samples) {
		fftSize *= 2
	}

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analysis: fft plan: %w", err)
	}

	win := window.Generate(window.TypeHann, fftSize, window.WithPeriodic())
	buf := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		buf[i] = float64(samples[i]) * win[i]
	}

	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	mags := make([]float64, len(spec))
	for k, c := range spec {
		mags[k] = cmplx.Abs(c)
	}
	return &Spectrum{
		Mags:  mags,
		BinHz: float64(sampleRate) / float64(fftSize),
	}, nil
}

// MagnitudeAt returns the magnitude of the bin nearest to freq.
func (s *Spectrum) MagnitudeAt(freq float64) float64 {
	k := int(freq/s.BinHz + 0.5)
	if k < 0 {
		k = 0
	}
	if k >= len(s.Mags) {
		k = len(s.Mags) - 1
	}
	return s.Mags[k]
}

// BandPeak returns the largest bin magnitude in [loHz, hiHz].
func (s *Spectrum) BandPeak(loHz, hiHz float64) float64 {
	lo := int(loHz / s.BinHz)
	hi := int(hiHz / s.BinHz)
	if lo < 0 {
		lo = 0
	}
	if hi >= len(s.Mags) {
		hi = len(s.Mags) - 1
	}
	var peak float64
	for k := lo; k <= hi; k++ {
		if s.Mags[k] > peak {
			peak = s.Mags[k]
		}
	}
	return peak
}

// DeinterleaveLeft extracts the left channel of interleaved stereo PCM.
func DeinterleaveLeft(stereo []float32) []float32 {
	out := make([]float32, len(stereo)/2)
	for i := range out {
		out[i] = stereo[i*2]
	}
	return out
}

// DeinterleaveRight extracts the right channel of interleaved stereo PCM.
func DeinterleaveRight(stereo []float32) []float32 {
	out := make([]float32, len(stereo)/2)
	for i := range out {
		out[i] = stereo[i*2+1]
	}
	return out
}

// Mono folds interleaved stereo PCM to mono by averaging channels.
func Mono(stereo []float32) []float32 {
	out := make([]float32, len(stereo)/2)
	for i := range out {
		out[i] = 0.5 * (stereo[i*2] + stereo[i*2+1])
	}
	return out
}

package dsp

import (
	"math"
	"testing"
)

func svfRMSRatio(mode SVFMode, cutoff, freq float32) float64 {
	const sampleRate = 44100
	s := NewSVF(mode, cutoff, 0, sampleRate)
	var inPow, outPow float64
	for n := 0; n < sampleRate; n++ {
		x := float32(math.Sin(2 * math.Pi * float64(freq) * float64(n) / sampleRate))
		y := s.Process(x)
		inPow += float64(x * x)
		outPow += float64(y * y)
	}
	return math.Sqrt(outPow / inPow)
}

func TestSVFLowpassResponse(t *testing.T) {
	if r := svfRMSRatio(SVFLowpass, 1000, 100); r < 0.9 {
		t.Fatalf("passband ratio %.4f, want ~1", r)
	}
	if r := svfRMSRatio(SVFLowpass, 1000, 6000); r > 0.1 {
		t.Fatalf("stopband ratio %.4f, want < 0.1", r)
	}
}

func TestSVFHighpassResponse(t *testing.T) {
	if r := svfRMSRatio(SVFHighpass, 1000, 6000); r < 0.8 {
		t.Fatalf("passband ratio %.4f, want ~1", r)
	}
	if r := svfRMSRatio(SVFHighpass, 1000, 100); r > 0.1 {
		t.Fatalf("stopband ratio %.4f, want < 0.1", r)
	}
}

func TestSVFNotchRejectsCenter(t *testing.T) {
	center := svfRMSRatio(SVFNotch, 1000, 1000)
	away := svfRMSRatio(SVFNotch, 1000, 100)
	if center > 0.3 {
		t.Fatalf("center ratio %.4f, want deep rejection", center)
	}
	if away < 0.8 {
		t.Fatalf("off-center ratio %.4f, want ~1", away)
	}
}

func TestSVFCutoffClamped(t *testing.T) {
	// Bright but reachable cutoffs and absurd ones both land on the fs/6
	// clamp and must stay stable at zero resonance.
	for _, cutoff := range []float32{12000, 44100.0 / 6, 1e9} {
		s := NewSVF(SVFLowpass, cutoff, 0, 44100)
		var peak float64
		for n := 0; n < 44100; n++ {
			x := float32(math.Sin(2 * math.Pi * 440 * float64(n) / 44100))
			y := math.Abs(float64(s.Process(x)))
			if y > peak {
				peak = y
			}
		}
		if math.IsNaN(peak) || math.IsInf(peak, 0) || peak > 4 {
			t.Fatalf("cutoff %g: filter unstable: peak %g", cutoff, peak)
		}
	}
}

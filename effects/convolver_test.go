package effects

import (
	"math"
	"testing"
)

func TestConvolverUnitImpulseDelaysByPartition(t *testing.T) {
	c := NewConvolver([]float32{1}, 1)
	in := make([]float32, 1024)
	for n := range in {
		in[n] = float32(n + 1)
	}
	out := runMono(c, in, 44100)

	// The internal 128-sample partitioning delays the wet path by one
	// partition; with a unit impulse IR the output is the shifted input.
	for n := 0; n < 128; n++ {
		if out[n] != 0 {
			t.Fatalf("pre-latency sample %d: got %g, want 0", n, out[n])
		}
	}
	for n := 128; n < len(out); n++ {
		if math.Abs(float64(out[n]-in[n-128])) > 1e-4 {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], in[n-128])
		}
	}
}

func TestConvolverScaledImpulse(t *testing.T) {
	c := NewConvolver([]float32{0.5}, 1)
	in := make([]float32, 512)
	in[0] = 1
	out := runMono(c, in, 44100)
	if got := out[128]; math.Abs(float64(got)-0.5) > 1e-4 {
		t.Fatalf("scaled impulse: got %g, want 0.5", got)
	}
}

func TestConvolverMixBlends(t *testing.T) {
	c := NewConvolver([]float32{1}, 0.5)
	in := make([]float32, 512)
	for n := range in {
		in[n] = 1
	}
	out := runMono(c, in, 44100)
	// Once both paths carry signal, the blend of dry 1 and wet 1 is 1.
	if got := out[400]; math.Abs(float64(got)-1) > 1e-4 {
		t.Fatalf("settled blend: got %g, want 1", got)
	}
	// Before the wet path fills, only the dry half is heard.
	if got := out[0]; math.Abs(float64(got)-0.5) > 1e-4 {
		t.Fatalf("pre-latency blend: got %g, want 0.5", got)
	}
}

func TestConvolverZeroMixBypasses(t *testing.T) {
	c := NewConvolver([]float32{0.25, 0.5}, 0)
	in := []float32{0.1, 0.2, 0.3}
	out := runMono(c, in, 44100)
	for n := range in {
		if out[n] != in[n] {
			t.Fatalf("zero mix altered sample %d: %g", n, out[n])
		}
	}
}

func TestConvolverEmptyIRPassesThrough(t *testing.T) {
	c := NewConvolver(nil, 1)
	in := make([]float32, 512)
	in[0] = 1
	out := runMono(c, in, 44100)
	// An empty IR degenerates to a unit impulse: delayed identity.
	if got := out[128]; math.Abs(float64(got)-1) > 1e-4 {
		t.Fatalf("degenerate IR: got %g, want 1", got)
	}
}

func TestConvolverResetClearsHistory(t *testing.T) {
	c := NewConvolver([]float32{1, 0.5, 0.25}, 1)
	in := make([]float32, 1024)
	in[0] = 1
	first := runMono(c, in, 44100)
	c.Reset()
	second := runMono(c, in, 44100)
	for n := range first {
		if math.Abs(float64(first[n]-second[n])) > 1e-5 {
			t.Fatalf("render after Reset differs at %d: %g vs %g", n, first[n], second[n])
		}
	}
}

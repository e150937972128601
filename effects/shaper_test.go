package effects

import (
	"math"
	"testing"
)

func TestDistortionFullWetIsTanh(t *testing.T) {
	d := NewDistortion(4, 1)
	in := []float32{0.1, 0.5, -0.5, 0.9}
	out := runMono(d, in, 44100)
	for n := range in {
		want := math.Tanh(float64(in[n]) * 4)
		if math.Abs(float64(out[n])-want) > 1e-3 {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], want)
		}
	}
}

func TestDistortionMixBlends(t *testing.T) {
	d := NewDistortion(4, 0.5)
	in := []float32{0.5}
	out := runMono(d, in, 44100)
	want := 0.5*0.5 + math.Tanh(2)*0.5
	if math.Abs(float64(out[0])-want) > 1e-3 {
		t.Fatalf("blended sample: got %g, want %g", out[0], want)
	}
}

func TestDistortionZeroMixBypasses(t *testing.T) {
	d := NewDistortion(10, 0)
	in := []float32{0.3, -0.7, 0.9}
	out := runMono(d, in, 44100)
	for n := range in {
		if out[n] != in[n] {
			t.Fatalf("zero mix altered sample %d: %g", n, out[n])
		}
	}
}

func TestDistortionBounded(t *testing.T) {
	d := NewDistortion(100, 1)
	in := []float32{5, -5, 100}
	out := runMono(d, in, 44100)
	for n := range out {
		if math.Abs(float64(out[n])) > 1.001 {
			t.Fatalf("tanh output out of range at %d: %g", n, out[n])
		}
	}
}

func TestSaturationSoftAndBounded(t *testing.T) {
	s := NewSaturation(2, 1)
	in := make([]float32, 64)
	for n := range in {
		in[n] = float32(n-32) / 16
	}
	out := runMono(s, in, 44100)
	for n := range out {
		if math.Abs(float64(out[n])) > 1.001 {
			t.Fatalf("saturation out of range at %d: %g", n, out[n])
		}
	}
	// Small signals pass roughly linearly scaled by the drive.
	s2 := NewSaturation(1, 1)
	small := []float32{0.01}
	got := runMono(s2, small, 44100)
	if math.Abs(float64(got[0])-0.01) > 1e-3 {
		t.Fatalf("small-signal response: got %g, want ~0.01", got[0])
	}
}

func TestBitcrusherQuantizes(t *testing.T) {
	b := NewBitcrusher(2, 1, 1)
	// 2 bits quantizes to steps of 2/3.
	in := []float32{0.4}
	out := runMono(b, in, 44100)
	want := math.Round(0.4*1.5) / 1.5
	if math.Abs(float64(out[0])-want) > 1e-5 {
		t.Fatalf("quantized sample: got %g, want %g", out[0], want)
	}
}

func TestBitcrusherDownsampleHolds(t *testing.T) {
	b := NewBitcrusher(24, 4, 1)
	in := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	out := runMono(b, in, 44100)
	// The held value repeats for the hold length.
	for n := 1; n < 4; n++ {
		if out[n] != out[0] {
			t.Fatalf("sample %d not held: %g vs %g", n, out[n], out[0])
		}
	}
	if out[4] == out[0] {
		t.Fatal("hold did not advance after its length")
	}
}

func TestBitcrusherHighDepthNearTransparent(t *testing.T) {
	b := NewBitcrusher(24, 1, 1)
	in := []float32{0.123, -0.456, 0.789}
	out := runMono(b, in, 44100)
	for n := range in {
		if math.Abs(float64(out[n]-in[n])) > 1e-4 {
			t.Fatalf("24-bit crush audible at %d: %g vs %g", n, out[n], in[n])
		}
	}
}

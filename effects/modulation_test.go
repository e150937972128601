package effects

import (
	"math"
	"testing"
)

func TestChorusThickensSignal(t *testing.T) {
	const sampleRate = 44100
	c := NewChorus(1, 0.5, 0.5)
	in := make([]float32, sampleRate/2)
	for n := range in {
		in[n] = float32(math.Sin(2 * math.Pi * 440 * float64(n) / sampleRate))
	}
	out := runMono(c, in, sampleRate)

	// Output must differ from the input but stay bounded.
	var diff float64
	for n := 2048; n < len(out); n++ {
		if math.Abs(float64(out[n])) > 2 {
			t.Fatalf("chorus sample %d out of range: %g", n, out[n])
		}
		diff += math.Abs(float64(out[n] - in[n]))
	}
	if diff < 1 {
		t.Fatalf("chorus left the signal untouched: total diff %g", diff)
	}
}

func TestChorusTapStaysInRange(t *testing.T) {
	const sampleRate = 44100
	c := NewChorus(1, 1, 1)
	in := make([]float32, sampleRate/2)
	in[0] = 1
	out := runMono(c, in, sampleRate)

	// At full depth the sweep spans 2..10 ms around the 6 ms center,
	// so the impulse echo must land inside that window.
	fs := float64(sampleRate)
	lo := int(0.002*fs) - 2
	hi := int(0.010*fs) + 2
	var energy float64
	for n := 1; n < len(out); n++ {
		if out[n] == 0 {
			continue
		}
		if n < lo || n > hi {
			t.Fatalf("chorus echo at sample %d, outside [%d, %d]", n, lo, hi)
		}
		energy += float64(out[n] * out[n])
	}
	if energy == 0 {
		t.Fatal("no wet echo")
	}
}

func TestChorusZeroMixBypasses(t *testing.T) {
	c := NewChorus(1, 0.5, 0)
	in := []float32{0.3, -0.4, 0.5}
	out := runMono(c, in, 44100)
	for n := range in {
		if out[n] != in[n] {
			t.Fatalf("zero mix altered sample %d: %g", n, out[n])
		}
	}
}

func TestFlangerStableAtMaxFeedback(t *testing.T) {
	const sampleRate = 44100
	f := NewFlanger(0.5, 1, 0.95, 0.5)
	in := make([]float32, sampleRate)
	for n := range in {
		in[n] = float32(0.5 * math.Sin(2*math.Pi*220*float64(n)/sampleRate))
	}
	out := runMono(f, in, sampleRate)
	for n := range out {
		if math.IsNaN(float64(out[n])) || math.Abs(float64(out[n])) > 20 {
			t.Fatalf("flanger unstable at sample %d: %g", n, out[n])
		}
	}
}

func TestPhaserNotchesSweep(t *testing.T) {
	const sampleRate = 44100
	p := NewPhaser(4, 0.5, 1, 0.3, 1)
	in := make([]float32, sampleRate/2)
	for n := range in {
		in[n] = float32(0.5 * math.Sin(2*math.Pi*800*float64(n)/sampleRate))
	}
	out := runMono(p, in, sampleRate)
	var diff, peak float64
	for n := 1024; n < len(out); n++ {
		a := math.Abs(float64(out[n]))
		if a > peak {
			peak = a
		}
		diff += math.Abs(float64(out[n] - in[n]))
	}
	if math.IsNaN(peak) || peak > 4 {
		t.Fatalf("phaser unstable: peak %g", peak)
	}
	if diff < 1 {
		t.Fatalf("phaser left the signal untouched: total diff %g", diff)
	}
}

func TestRingModFullWetMultiplies(t *testing.T) {
	const sampleRate = 44100
	r := NewRingMod(100, 1)
	in := make([]float32, 512)
	for n := range in {
		in[n] = 1
	}
	out := runMono(r, in, sampleRate)
	for n := 0; n < 512; n++ {
		want := math.Sin(2 * math.Pi * 100 * float64(n) / sampleRate)
		if math.Abs(float64(out[n])-want) > 1e-3 {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], want)
		}
	}
}

func TestTremoloGainRange(t *testing.T) {
	const sampleRate = 44100
	tr := NewTremolo(5, 1)
	in := make([]float32, sampleRate)
	for n := range in {
		in[n] = 1
	}
	out := runMono(tr, in, sampleRate)
	var min, max float64 = 10, -10
	for _, s := range out {
		v := float64(s)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	// Depth 1 swings the gain across [0, 1].
	if min > 0.01 || min < -0.01 {
		t.Fatalf("tremolo floor: got %g, want ~0", min)
	}
	if max < 0.99 || max > 1.01 {
		t.Fatalf("tremolo ceiling: got %g, want ~1", max)
	}
}

func TestTremoloDeterministic(t *testing.T) {
	a := NewTremolo(3, 0.7)
	b := NewTremolo(3, 0.7)
	in := make([]float32, 4096)
	for n := range in {
		in[n] = 0.5
	}
	oa := runMono(a, in, 44100)
	ob := runMono(b, in, 44100)
	for n := range oa {
		if oa[n] != ob[n] {
			t.Fatalf("tremolo diverged at sample %d", n)
		}
	}
}

func TestAutoPanOffsetSwings(t *testing.T) {
	ap := NewAutoPan(1, 0.4)
	// One full LFO cycle: extremes at quarter phases.
	if got := ap.Offset(0, 0); math.Abs(float64(got)) > 1e-6 {
		t.Fatalf("offset at t=0: got %g, want 0", got)
	}
	if got := ap.Offset(0.25, 64); math.Abs(float64(got)-0.4) > 1e-3 {
		t.Fatalf("offset at quarter cycle: got %g, want 0.4", got)
	}
	if got := ap.Offset(0.75, 128); math.Abs(float64(got)+0.4) > 1e-3 {
		t.Fatalf("offset at three quarters: got %g, want -0.4", got)
	}
}

func TestAutoPanMonoPassThrough(t *testing.T) {
	ap := NewAutoPan(1, 1)
	buf := []float32{0.1, -0.2, 0.3}
	want := append([]float32(nil), buf...)
	ap.ProcessBlock(buf, 44100, 0, 0, nil)
	for n := range buf {
		if buf[n] != want[n] {
			t.Fatalf("autopan altered the mono signal at %d", n)
		}
	}
}

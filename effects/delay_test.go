package effects

import (
	"math"
	"testing"
)

func runMono(u Unit, in []float32, sampleRate int) []float32 {
	out := append([]float32(nil), in...)
	const block = 256
	dt := 1 / float32(sampleRate)
	for off := 0; off < len(out); off += block {
		end := off + block
		if end > len(out) {
			end = len(out)
		}
		u.ProcessBlock(out[off:end], sampleRate, float32(off)*dt, uint64(off), nil)
	}
	return out
}

func TestDelayEchoSpacingAndDecay(t *testing.T) {
	const sampleRate = 44100
	d := NewDelay(0.1, 0.35, 0.5)

	in := make([]float32, sampleRate)
	in[0] = 1
	out := runMono(d, in, sampleRate)

	// 0.1 s at 44100 Hz is exactly 4410 samples. The first echo carries the
	// full impulse scaled by the mix; the second decays by the feedback.
	if got := out[0]; math.Abs(float64(got)-0.5) > 1e-5 {
		t.Fatalf("dry impulse: got %g, want 0.5", got)
	}
	if got := out[4410]; math.Abs(float64(got)-0.5) > 1e-4 {
		t.Fatalf("first echo: got %g, want 0.5", got)
	}
	if got := out[8820]; math.Abs(float64(got)-0.175) > 1e-4 {
		t.Fatalf("second echo: got %g, want 0.175", got)
	}
	// Between echoes the line is silent.
	for n := 100; n < 4400; n++ {
		if out[n] != 0 {
			t.Fatalf("unexpected audio between echoes at %d: %g", n, out[n])
		}
	}
}

func TestDelayZeroMixBypasses(t *testing.T) {
	d := NewDelay(0.1, 0.5, 0)
	in := []float32{0.3, -0.4, 0.5, 0}
	out := runMono(d, in, 44100)
	for n := range in {
		if out[n] != in[n] {
			t.Fatalf("zero mix altered sample %d: %g", n, out[n])
		}
	}
}

func TestDelayResetClearsEchoes(t *testing.T) {
	const sampleRate = 44100
	d := NewDelay(0.05, 0.3, 0.5)
	in := make([]float32, sampleRate/2)
	in[0] = 1

	first := runMono(d, in, sampleRate)
	d.Reset()
	second := runMono(d, in, sampleRate)
	for n := range first {
		if first[n] != second[n] {
			t.Fatalf("render after Reset differs at sample %d: %g vs %g", n, first[n], second[n])
		}
	}
}

func TestDelayParamsClamped(t *testing.T) {
	d := NewDelay(100, 5, 3)
	if d.time.value != maxDelaySeconds {
		t.Fatalf("time not clamped: %g", d.time.value)
	}
	if d.feedback.value != 0.99 {
		t.Fatalf("feedback not clamped: %g", d.feedback.value)
	}
	if d.mix.value != 1 {
		t.Fatalf("mix not clamped: %g", d.mix.value)
	}
}

func TestDelayMixAutomationFades(t *testing.T) {
	const sampleRate = 44100
	d := NewDelay(0.05, 0, 0.5)
	d.AutomateMix(NewAutomation(InterpStep,
		Breakpoint{Time: 0, Value: 0.5},
		Breakpoint{Time: 0.5, Value: 0},
	))

	in := make([]float32, sampleRate)
	in[0] = 1
	in[int(0.6*sampleRate)] = 1
	out := runMono(d, in, sampleRate)

	// Before the fade the mix is active: half dry, echoed at 0.05 s.
	if got := out[0]; math.Abs(float64(got)-0.5) > 1e-5 {
		t.Fatalf("dry impulse before fade: got %g, want 0.5", got)
	}
	if got := out[2205]; math.Abs(float64(got)-0.5) > 1e-4 {
		t.Fatalf("echo before fade: got %g, want 0.5", got)
	}
	// After the fade the unit bypasses: full dry, no echo.
	second := int(0.6 * sampleRate)
	if got := out[second]; got != 1 {
		t.Fatalf("dry impulse after fade: got %g, want 1", got)
	}
	if got := out[second+2205]; got != 0 {
		t.Fatalf("echo after fade: got %g, want 0", got)
	}
}

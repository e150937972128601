package music

import (
	"math"
	"testing"

	"github.com/sqrew/tunes-sub001/synth"
)

func TestShift(t *testing.T) {
	in := []AudioEvent{NewNote([]float32{440}, 1, 0.5), NewDrum(synth.DrumKick, 0.2)}
	out := Shift(in, 0.5)
	if out[0].Start != 1.5 || out[1].Start != 0.7 {
		t.Fatalf("shifted starts: %g, %g", out[0].Start, out[1].Start)
	}
	// Input untouched.
	if in[0].Start != 1 {
		t.Fatal("input mutated")
	}
	// Negative shifts clamp at zero.
	out = Shift(in, -0.5)
	if out[1].Start != 0 {
		t.Fatalf("clamped start: got %g, want 0", out[1].Start)
	}
}

func TestTransposeNotesOnly(t *testing.T) {
	in := []AudioEvent{NewNote([]float32{440, 550}, 0, 1), NewDrum(synth.DrumSnare, 0)}
	out := Transpose(in, 12)
	if math.Abs(float64(out[0].Freqs[0])-880) > 0.01 {
		t.Fatalf("transposed freq: got %g, want 880", out[0].Freqs[0])
	}
	if math.Abs(float64(out[0].Freqs[1])-1100) > 0.01 {
		t.Fatalf("transposed second freq: got %g, want 1100", out[0].Freqs[1])
	}
	if out[1].Drum != synth.DrumSnare {
		t.Fatal("drum event altered")
	}
	if in[0].Freqs[0] != 440 {
		t.Fatal("input mutated")
	}
}

func TestTransposeDownSemitone(t *testing.T) {
	in := []AudioEvent{NewNote([]float32{440}, 0, 1)}
	out := Transpose(in, -12)
	if math.Abs(float64(out[0].Freqs[0])-220) > 0.01 {
		t.Fatalf("down an octave: got %g, want 220", out[0].Freqs[0])
	}
}

func TestStretch(t *testing.T) {
	in := []AudioEvent{NewNote([]float32{440}, 1, 0.5), NewDrum(synth.DrumKick, 2)}
	out := Stretch(in, 2)
	if out[0].Start != 2 || out[0].Duration != 1 {
		t.Fatalf("stretched note: start %g, duration %g", out[0].Start, out[0].Duration)
	}
	// Drums keep their fixed sounding length; only the start moves.
	if out[1].Start != 4 {
		t.Fatalf("stretched drum start: got %g", out[1].Start)
	}
	// A non-positive factor leaves events unchanged.
	same := Stretch(in, 0)
	if same[0].Start != 1 || same[0].Duration != 0.5 {
		t.Fatal("zero factor altered events")
	}
}

func TestRepeat(t *testing.T) {
	in := []AudioEvent{NewNote([]float32{440}, 0, 0.5), NewNote([]float32{550}, 0.5, 0.5)}
	out := Repeat(in, 2, 1)
	if len(out) != 6 {
		t.Fatalf("repeated length: got %d, want 6", len(out))
	}
	if out[2].Start != 1 || out[3].Start != 1.5 {
		t.Fatalf("first copy starts: %g, %g", out[2].Start, out[3].Start)
	}
	if out[4].Start != 2 || out[5].Start != 2.5 {
		t.Fatalf("second copy starts: %g, %g", out[4].Start, out[5].Start)
	}
}

func TestWithVelocity(t *testing.T) {
	in := []AudioEvent{NewNote([]float32{440}, 0, 1), NewDrum(synth.DrumKick, 0), NewTempoChange(0, 100)}
	out := WithVelocity(in, 0.5)
	if out[0].Velocity != 0.5 || out[1].Velocity != 0.5 {
		t.Fatalf("velocities: %g, %g", out[0].Velocity, out[1].Velocity)
	}
	if out[2].BPM != 100 {
		t.Fatal("meta event altered")
	}
}

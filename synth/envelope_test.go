package synth

import (
	"math"
	"testing"
)

func TestADSRStages(t *testing.T) {
	env := ADSR{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.2}
	const dur = 1.0

	cases := []struct {
		t    float32
		want float32
	}{
		{0, 0},
		{0.05, 0.5},  // halfway through attack
		{0.1, 1},     // attack peak
		{0.15, 0.75}, // halfway through decay
		{0.2, 0.5},   // sustain reached
		{0.5, 0.5},   // holding sustain
		{1.0, 0.5},   // release starts from sustain
		{1.1, 0.25},  // halfway through release
		{1.2, 0},     // released
		{2.0, 0},
	}
	for _, c := range cases {
		got := env.Level(c.t, dur)
		if math.Abs(float64(got-c.want)) > 1e-5 {
			t.Errorf("Level(%g): got %g, want %g", c.t, got, c.want)
		}
	}
}

func TestADSRZeroAttackStartsAtPeak(t *testing.T) {
	env := ADSR{Attack: 0, Decay: 0.1, Sustain: 0.5, Release: 0.1}
	if got := env.Level(0, 1); got != 1 {
		t.Fatalf("Level(0) with zero attack: got %g, want 1", got)
	}
}

func TestADSRZeroReleaseCutsImmediately(t *testing.T) {
	env := ADSR{Attack: 0.01, Decay: 0.01, Sustain: 0.8, Release: 0}
	if got := env.Level(0.5, 0.5); got != 0 {
		t.Fatalf("Level at note end with zero release: got %g, want 0", got)
	}
}

func TestADSRShortNoteReleasesFromAttackLevel(t *testing.T) {
	// Note ends mid-attack; release must start from the level reached.
	env := ADSR{Attack: 0.2, Decay: 0.1, Sustain: 0.5, Release: 0.1}
	const dur = 0.1 // halfway up the attack ramp
	atEnd := env.Level(dur, dur)
	if math.Abs(float64(atEnd)-0.5) > 1e-5 {
		t.Fatalf("level at early release: got %g, want 0.5", atEnd)
	}
	mid := env.Level(dur+0.05, dur)
	if math.Abs(float64(mid)-0.25) > 1e-5 {
		t.Fatalf("level halfway through release: got %g, want 0.25", mid)
	}
}

func TestADSRDone(t *testing.T) {
	env := ADSR{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.1}
	if env.Done(0.05, 1) {
		t.Fatal("held note reported done")
	}
	if env.Done(1.05, 1) {
		t.Fatal("mid-release reported done")
	}
	if !env.Done(1.2, 1) {
		t.Fatal("fully released note not done")
	}
}

func TestFilterEnvelopeCutoffSweep(t *testing.T) {
	fe := FilterEnvelope{
		Env:    ADSR{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.1},
		LowHz:  200,
		HighHz: 2200,
		Amount: 1,
	}
	if !fe.Active() {
		t.Fatal("envelope with amount 1 not active")
	}
	if got := fe.Cutoff(0, 1); got != 200 {
		t.Fatalf("cutoff at t=0: got %g, want 200", got)
	}
	if got := fe.Cutoff(0.1, 1); got != 2200 {
		t.Fatalf("cutoff at attack peak: got %g, want 2200", got)
	}
	if got := fe.Cutoff(0.5, 1); math.Abs(float64(got)-1200) > 0.5 {
		t.Fatalf("cutoff at sustain: got %g, want 1200", got)
	}
}

func TestFilterEnvelopeInactive(t *testing.T) {
	if (FilterEnvelope{LowHz: 100, HighHz: 1000, Amount: 0}).Active() {
		t.Fatal("zero amount should be inactive")
	}
	if (FilterEnvelope{LowHz: 1000, HighHz: 100, Amount: 1}).Active() {
		t.Fatal("inverted bounds should be inactive")
	}
}

package synth

// ADSR is a four-stage amplitude envelope. Attack, Decay and Release are in
// seconds; Sustain is linear gain in [0,1].
type ADSR struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// ReleaseEpsilon is the level below which a released voice counts as silent.
const ReleaseEpsilon = 1e-4

// heldLevel returns the envelope level at t seconds after note-on, assuming
// the note is still held.
func (e ADSR) heldLevel(t float32) float32 {
	if t < 0 {
		return 0
	}
	if e.Attack > 0 && t < e.Attack {
		return t / e.Attack
	}
	t -= e.Attack
	if e.Decay > 0 && t < e.Decay {
		return 1 - (1-e.Sustain)*(t/e.Decay)
	}
	return e.Sustain
}

// Level samples the envelope at t seconds after note-on for a note of the
// given duration. After the duration the envelope releases linearly from the
// level it held at release time.
func (e ADSR) Level(t, duration float32) float32 {
	if t < duration {
		return e.heldLevel(t)
	}
	releaseLevel := e.heldLevel(duration)
	if e.Release <= 0 {
		return 0
	}
	tr := t - duration
	if tr >= e.Release {
		return 0
	}
	return releaseLevel * (1 - tr/e.Release)
}

// Done reports whether the envelope has fully decayed at t seconds for a
// note of the given duration.
func (e ADSR) Done(t, duration float32) bool {
	if t < duration {
		return false
	}
	return e.Level(t, duration) < ReleaseEpsilon
}

// FilterEnvelope modulates a cutoff between two bounds with an ADSR shape.
// Amount zero disables it.
type FilterEnvelope struct {
	Env    ADSR
	LowHz  float32
	HighHz float32
	Amount float32 // in [0,1]
}

// Active reports whether the envelope affects the filter at all.
func (f FilterEnvelope) Active() bool {
	return f.Amount != 0 && f.HighHz > f.LowHz
}

// Cutoff returns the modulated cutoff at t seconds into a note of the given
// duration.
func (f FilterEnvelope) Cutoff(t, duration float32) float32 {
	level := f.Env.Level(t, duration)
	return f.LowHz + (f.HighHz-f.LowHz)*level*f.Amount
}

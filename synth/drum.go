package synth

import (
	"github.com/cwbudde/algo-approx"

	"github.com/sqrew/tunes-sub001/dsp"
)

// DrumKind selects one of the built-in percussion voices.
type DrumKind int

const (
	DrumKick DrumKind = iota
	DrumSnare
	DrumHiHatClosed
	DrumHiHatOpen
	DrumTomLow
	DrumTomMid
	DrumTomHigh
	DrumClap
	DrumRimshot
	DrumCrash
	DrumRide
)

var drumDurations = [...]float32{
	DrumKick:        0.50,
	DrumSnare:       0.25,
	DrumHiHatClosed: 0.10,
	DrumHiHatOpen:   0.50,
	DrumTomLow:      0.40,
	DrumTomMid:      0.35,
	DrumTomHigh:     0.30,
	DrumClap:        0.20,
	DrumRimshot:     0.08,
	DrumCrash:       1.50,
	DrumRide:        1.20,
}

var drumNames = [...]string{
	DrumKick:        "kick",
	DrumSnare:       "snare",
	DrumHiHatClosed: "hihat-closed",
	DrumHiHatOpen:   "hihat-open",
	DrumTomLow:      "tom-low",
	DrumTomMid:      "tom-mid",
	DrumTomHigh:     "tom-high",
	DrumClap:        "clap",
	DrumRimshot:     "rimshot",
	DrumCrash:       "crash",
	DrumRide:        "ride",
}

// Duration returns the fixed sounding length for the drum kind, in seconds.
func (k DrumKind) Duration() float32 {
	if k < 0 || int(k) >= len(drumDurations) {
		return 0.25
	}
	return drumDurations[k]
}

func (k DrumKind) String() string {
	if k < 0 || int(k) >= len(drumNames) {
		return "drum"
	}
	return drumNames[k]
}

// DrumVoice synthesizes one percussion hit from noise bursts, pitched
// transients and a per-kind decay envelope.
type DrumVoice struct {
	sampleRate int
	kind       DrumKind
	velocity   float32
	duration   float32

	tone   Oscillator
	noise  Oscillator
	filter *dsp.SVF

	age    int
	active bool
}

// NewDrumVoice creates a percussion voice.
func NewDrumVoice(sampleRate int, kind DrumKind, velocity float32, seed uint32) *DrumVoice {
	v := &DrumVoice{
		sampleRate: sampleRate,
		kind:       kind,
		velocity:   dsp.Clamp(velocity, 0, 1),
		duration:   kind.Duration(),
		active:     true,
	}
	v.noise.Wave = WaveNoise
	v.noise.SetSeed(seed)
	switch kind {
	case DrumSnare:
		v.filter = dsp.NewSVF(dsp.SVFHighpass, 1200, 0.2, sampleRate)
	case DrumHiHatClosed, DrumHiHatOpen:
		v.filter = dsp.NewSVF(dsp.SVFHighpass, 7000, 0.3, sampleRate)
	case DrumClap:
		v.filter = dsp.NewSVF(dsp.SVFBandpass, 1500, 0.5, sampleRate)
	case DrumRimshot:
		v.filter = dsp.NewSVF(dsp.SVFBandpass, 3500, 0.4, sampleRate)
	case DrumCrash:
		v.filter = dsp.NewSVF(dsp.SVFHighpass, 5000, 0.2, sampleRate)
	case DrumRide:
		v.filter = dsp.NewSVF(dsp.SVFHighpass, 6000, 0.2, sampleRate)
	}
	return v
}

// Active reports whether the drum hit is still sounding.
func (v *DrumVoice) Active() bool {
	return v.active
}

// EnvLevel returns the current decay-envelope level.
func (v *DrumVoice) EnvLevel() float32 {
	t := float32(v.age) / float32(v.sampleRate)
	if t >= v.duration {
		return 0
	}
	return v.envAt(t)
}

func (v *DrumVoice) envAt(t float32) float32 {
	switch v.kind {
	case DrumKick:
		return approx.FastExp(-8 * t)
	case DrumSnare:
		return approx.FastExp(-18 * t)
	case DrumHiHatClosed:
		return approx.FastExp(-60 * t)
	case DrumHiHatOpen:
		return approx.FastExp(-6 * t)
	case DrumTomLow, DrumTomMid, DrumTomHigh:
		return approx.FastExp(-10 * t)
	case DrumClap:
		// Three hand-clap re-triggers 11 ms apart, then a tail.
		env := approx.FastExp(-20 * t)
		if t < 0.033 {
			retrig := t - float32(int(t/0.011))*0.011
			env = approx.FastExp(-90 * retrig)
		}
		return env
	case DrumRimshot:
		return approx.FastExp(-55 * t)
	case DrumCrash:
		return approx.FastExp(-2.5 * t)
	case DrumRide:
		return approx.FastExp(-3 * t)
	default:
		return approx.FastExp(-12 * t)
	}
}

func (v *DrumVoice) toneFreq(t float32) float32 {
	switch v.kind {
	case DrumKick:
		return 45 + 150*approx.FastExp(-30*t)
	case DrumSnare:
		return 185
	case DrumTomLow:
		return 70 + 60*approx.FastExp(-18*t)
	case DrumTomMid:
		return 110 + 80*approx.FastExp(-18*t)
	case DrumTomHigh:
		return 165 + 100*approx.FastExp(-18*t)
	case DrumRimshot:
		return 450
	case DrumRide:
		return 310
	default:
		return 0
	}
}

func (v *DrumVoice) noiseGain() float32 {
	switch v.kind {
	case DrumKick:
		return 0.12
	case DrumSnare:
		return 0.8
	case DrumHiHatClosed, DrumHiHatOpen, DrumCrash:
		return 1
	case DrumTomLow, DrumTomMid, DrumTomHigh:
		return 0.1
	case DrumClap:
		return 1
	case DrumRimshot:
		return 0.5
	case DrumRide:
		return 0.85
	default:
		return 1
	}
}

func (v *DrumVoice) toneGain() float32 {
	switch v.kind {
	case DrumKick:
		return 0.95
	case DrumSnare:
		return 0.45
	case DrumTomLow, DrumTomMid, DrumTomHigh:
		return 0.9
	case DrumRimshot:
		return 0.6
	case DrumRide:
		return 0.15
	default:
		return 0
	}
}

// Render adds up to len(dst) samples into dst and returns the frame count
// produced before the hit ended.
func (v *DrumVoice) Render(dst []float32) int {
	if !v.active {
		return 0
	}
	invRate := 1 / float32(v.sampleRate)
	noiseGain := v.noiseGain()
	toneGain := v.toneGain()

	for i := range dst {
		t := float32(v.age) * invRate
		if t >= v.duration {
			v.active = false
			return i
		}
		env := v.envAt(t)

		var sample float32
		if toneGain > 0 {
			sample += toneGain * v.tone.Next(v.toneFreq(t), v.sampleRate)
		}
		if noiseGain > 0 {
			n := v.noise.Next(0, v.sampleRate)
			if v.filter != nil {
				n = v.filter.Process(n)
			}
			sample += noiseGain * n
		}
		// Click transient to keep the kick attack sharp.
		if v.kind == DrumKick && t < 0.004 {
			sample += 0.3 * v.noise.Next(0, v.sampleRate)
		}

		dst[i] += sample * env * v.velocity
		v.age++
	}
	return len(dst)
}

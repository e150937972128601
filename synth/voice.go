package synth

import (
	"github.com/cwbudde/algo-approx"

	"github.com/sqrew/tunes-sub001/dsp"
)

// MaxChordSize is the largest number of simultaneous frequencies one note
// event can carry without a per-note heap allocation.
const MaxChordSize = 8

// NoteParams describes one note voice at allocation time.
type NoteParams struct {
	Freqs     [MaxChordSize]float32
	NumFreqs  int
	Duration  float32 // seconds, > 0
	Wave      Waveform
	Table     *Wavetable // custom wavetable, overrides Wave when non-nil
	Env       ADSR
	FilterEnv FilterEnvelope
	FMRatio   float32 // modulator:carrier frequency ratio
	FMIndex   float32 // modulation index; 0 disables FM
	PitchBend float32 // semitones
	Velocity  float32 // [0,1]

	// In-line voice filter; Cutoff <= 0 disables it.
	FilterMode      SVFModeParam
	FilterCutoff    float32
	FilterResonance float32
}

// SVFModeParam mirrors dsp.SVFMode at the parameter boundary.
type SVFModeParam int

const (
	FilterLowpass SVFModeParam = iota
	FilterHighpass
	FilterBandpass
	FilterNotch
)

// Voice renders one sounding note: oscillators for each chord frequency, an
// optional FM operator pair, the amplitude envelope and the in-line filter.
type Voice struct {
	sampleRate int
	params     NoteParams
	bendRatio  float32

	carriers   [MaxChordSize]Oscillator
	modulators [MaxChordSize]Oscillator
	filter     *dsp.SVF

	age    int // samples since note-on
	active bool
}

// NewVoice creates a voice for a note. The seed feeds noise oscillators so
// renders stay deterministic.
func NewVoice(sampleRate int, params NoteParams, seed uint32) *Voice {
	if params.NumFreqs > MaxChordSize {
		params.NumFreqs = MaxChordSize
	}
	if params.NumFreqs < 1 {
		params.NumFreqs = 1
	}
	v := &Voice{
		sampleRate: sampleRate,
		params:     params,
		bendRatio:  1,
		active:     true,
	}
	if params.PitchBend != 0 {
		v.bendRatio = pow2(params.PitchBend / 12)
	}
	for i := 0; i < params.NumFreqs; i++ {
		v.carriers[i].Wave = params.Wave
		v.carriers[i].Table = params.Table
		v.carriers[i].SetSeed(seed + uint32(i)*2654435761)
	}
	if params.FilterCutoff > 0 {
		cutoff := params.FilterCutoff
		if params.FilterEnv.Active() {
			cutoff = params.FilterEnv.Cutoff(0, params.Duration)
		}
		v.filter = dsp.NewSVF(svfMode(params.FilterMode), cutoff, params.FilterResonance, sampleRate)
	}
	return v
}

func svfMode(m SVFModeParam) dsp.SVFMode {
	switch m {
	case FilterHighpass:
		return dsp.SVFHighpass
	case FilterBandpass:
		return dsp.SVFBandpass
	case FilterNotch:
		return dsp.SVFNotch
	default:
		return dsp.SVFLowpass
	}
}

// Active reports whether the voice still produces audio.
func (v *Voice) Active() bool {
	return v.active
}

// EnvLevel returns the current amplitude-envelope level, used by the voice
// pool to pick a steal victim.
func (v *Voice) EnvLevel() float32 {
	t := float32(v.age) / float32(v.sampleRate)
	return v.params.Env.Level(t, v.params.Duration)
}

// Render adds up to len(dst) samples into dst and returns how many frames it
// produced before (possibly) going inactive.
func (v *Voice) Render(dst []float32) int {
	if !v.active {
		return 0
	}
	invRate := 1 / float32(v.sampleRate)
	n := v.params.NumFreqs
	invN := 1 / float32(n)
	filtEnvActive := v.filter != nil && v.params.FilterEnv.Active()

	for i := range dst {
		t := float32(v.age) * invRate
		env := v.params.Env.Level(t, v.params.Duration)
		if t >= v.params.Duration && env < ReleaseEpsilon {
			v.active = false
			return i
		}

		var sum float32
		for c := 0; c < n; c++ {
			f := v.params.Freqs[c] * v.bendRatio
			if v.params.FMIndex > 0 {
				m := v.modulators[c].Next(f*v.params.FMRatio, v.sampleRate)
				f += v.params.FMIndex * m * f
			}
			sum += v.carriers[c].Next(f, v.sampleRate)
		}
		sample := sum * invN * v.params.Velocity * env

		if v.filter != nil {
			if filtEnvActive {
				v.filter.SetCutoff(v.params.FilterEnv.Cutoff(t, v.params.Duration), v.sampleRate)
			}
			sample = v.filter.Process(sample)
		}

		dst[i] += sample
		v.age++
	}
	return len(dst)
}

const ln2 = 0.69314718055994530942

// pow2 computes 2^x with the fast exponential approximation.
func pow2(x float32) float32 {
	return approx.FastExp(x * ln2)
}

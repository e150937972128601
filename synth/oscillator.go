package synth

// Oscillator generates one waveform by phase accumulation. The zero value is
// usable; Seed should be set before the first Next call when noise
// determinism matters.
type Oscillator struct {
	Wave  Waveform
	Table *Wavetable // overrides Wave when non-nil

	phase float32
	seed  uint32
}

// SetSeed seeds the noise generator. A zero seed is replaced with 1.
func (o *Oscillator) SetSeed(seed uint32) {
	if seed == 0 {
		seed = 1
	}
	o.seed = seed
}

// SetPhase positions the oscillator inside its period.
func (o *Oscillator) SetPhase(phase float32) {
	o.phase = phase - float32(int(phase))
}

// Next advances the oscillator by freq/sampleRate and returns one sample.
func (o *Oscillator) Next(freq float32, sampleRate int) float32 {
	out := o.sampleAt(o.phase)
	o.phase += freq / float32(sampleRate)
	o.phase -= float32(int(o.phase))
	if o.phase < 0 {
		o.phase += 1
	}
	return out
}

func (o *Oscillator) sampleAt(phase float32) float32 {
	if o.Table != nil {
		return o.Table.Lookup(phase)
	}
	switch o.Wave {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case WavePulse:
		if phase < 0.25 {
			return 1
		}
		return -1
	case WaveNoise:
		return o.rand()
	case WaveSquareBL:
		return squareBandLimited().Lookup(phase)
	case WaveSawBL:
		return sawBandLimited().Lookup(phase)
	default:
		return SineTable().Lookup(phase)
	}
}

// rand is the 16007 LCG shared by old softsynth intros; cheap and repeatable.
func (o *Oscillator) rand() float32 {
	if o.seed == 0 {
		o.seed = 1
	}
	o.seed *= 16007
	return float32(int32(o.seed)) / -2147483648.0
}

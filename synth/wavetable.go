package synth

import (
	"sync"

	"github.com/chewxy/math32"
)

// Waveform selects the periodic generator used by an oscillator.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSaw
	WaveTriangle
	WavePulse
	WaveNoise
	// Band-limited variants trade a table build for alias-free highs.
	WaveSquareBL
	WaveSawBL
)

const sineTableSize = 4096

var (
	sineTableOnce sync.Once
	sineTable     *Wavetable
)

// SineTable returns the shared sine wavetable, built on first use and
// read-only afterwards.
func SineTable() *Wavetable {
	sineTableOnce.Do(func() {
		sineTable = NewWavetableFunc(sineTableSize, func(phase float32) float32 {
			return math32.Sin(2 * math32.Pi * phase)
		})
	})
	return sineTable
}

// Wavetable holds one period of a waveform for phase-accumulating lookup.
type Wavetable struct {
	samples []float32
}

// NewWavetableFunc builds a table by sampling fn over one period (phase in [0,1)).
func NewWavetableFunc(size int, fn func(phase float32) float32) *Wavetable {
	if size < 2 {
		size = 2
	}
	samples := make([]float32, size)
	for i := range samples {
		samples[i] = fn(float32(i) / float32(size))
	}
	return &Wavetable{samples: samples}
}

// Harmonic is one additive-synthesis partial.
type Harmonic struct {
	Number    int
	Amplitude float32
}

// NewWavetableHarmonics builds a table by summing sine partials.
func NewWavetableHarmonics(size int, harmonics []Harmonic) *Wavetable {
	return NewWavetableFunc(size, func(phase float32) float32 {
		var sum float32
		for _, h := range harmonics {
			if h.Number < 1 {
				continue
			}
			sum += h.Amplitude * math32.Sin(2*math32.Pi*float32(h.Number)*phase)
		}
		return sum
	})
}

// NewWavetablePulse builds a pulse table with the given duty cycle in (0,1).
func NewWavetablePulse(size int, width float32) *Wavetable {
	if width <= 0 {
		width = 0.5
	}
	if width >= 1 {
		width = 0.5
	}
	return NewWavetableFunc(size, func(phase float32) float32 {
		if phase < width {
			return 1
		}
		return -1
	})
}

// NewWavetableSamples wraps caller-provided samples as a table.
func NewWavetableSamples(samples []float32) *Wavetable {
	if len(samples) < 2 {
		samples = []float32{0, 0}
	}
	return &Wavetable{samples: samples}
}

// Len returns the table length.
func (w *Wavetable) Len() int {
	return len(w.samples)
}

// Lookup reads the table at phase in [0,1) with linear interpolation.
func (w *Wavetable) Lookup(phase float32) float32 {
	pos := phase * float32(len(w.samples))
	i := int(pos)
	frac := pos - float32(i)
	if i >= len(w.samples) {
		i = 0
		frac = 0
	}
	j := i + 1
	if j >= len(w.samples) {
		j = 0
	}
	s1 := w.samples[i]
	s2 := w.samples[j]
	return s1 + frac*(s2-s1)
}

// Band-limited tables are built once per (waveform, octave-ish) need; 32
// partials keeps them alias-free below ~5.5 kHz fundamentals at 44.1 kHz.
const bandLimitedPartials = 32

var (
	sawBLOnce    sync.Once
	sawBLTable   *Wavetable
	squareBLOnce sync.Once
	squareBLTab  *Wavetable
)

func sawBandLimited() *Wavetable {
	sawBLOnce.Do(func() {
		harmonics := make([]Harmonic, 0, bandLimitedPartials)
		for n := 1; n <= bandLimitedPartials; n++ {
			amp := float32(2) / (math32.Pi * float32(n))
			if n%2 == 0 {
				amp = -amp
			}
			harmonics = append(harmonics, Harmonic{Number: n, Amplitude: amp})
		}
		sawBLTable = NewWavetableHarmonics(sineTableSize, harmonics)
	})
	return sawBLTable
}

func squareBandLimited() *Wavetable {
	squareBLOnce.Do(func() {
		harmonics := make([]Harmonic, 0, bandLimitedPartials/2)
		for n := 1; n <= bandLimitedPartials; n += 2 {
			harmonics = append(harmonics, Harmonic{Number: n, Amplitude: 4 / (math32.Pi * float32(n))})
		}
		squareBLTab = NewWavetableHarmonics(sineTableSize, harmonics)
	})
	return squareBLTab
}

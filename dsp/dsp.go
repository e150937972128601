package dsp

import "math"

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	// Update state
	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = FlushDenormals(output)

	return b.y1
}

// SetCoefficients swaps filter coefficients without disturbing state.
func (b *Biquad) SetCoefficients(b0, b1, b2, a1, a2 float32) {
	b.b0, b.b1, b.b2 = b0, b1, b2
	b.a1, b.a2 = a1, a2
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

func normalizedRBJ(b0, b1, b2, a0, a1, a2 float64) (float32, float32, float32, float32, float32) {
	return float32(b0 / a0), float32(b1 / a0), float32(b2 / a0), float32(a1 / a0), float32(a2 / a0)
}

// LowpassCoefficients returns RBJ lowpass biquad coefficients.
func LowpassCoefficients(cutoff, q float32, sampleRate int) (float32, float32, float32, float32, float32) {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)
	return normalizedRBJ(
		(1.0-cosw0)/2.0, 1.0-cosw0, (1.0-cosw0)/2.0,
		1.0+alpha, -2.0*cosw0, 1.0-alpha,
	)
}

// HighpassCoefficients returns RBJ highpass biquad coefficients.
func HighpassCoefficients(cutoff, q float32, sampleRate int) (float32, float32, float32, float32, float32) {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)
	return normalizedRBJ(
		(1.0+cosw0)/2.0, -(1.0 + cosw0), (1.0+cosw0)/2.0,
		1.0+alpha, -2.0*cosw0, 1.0-alpha,
	)
}

// BandpassCoefficients returns RBJ constant-peak bandpass coefficients.
func BandpassCoefficients(center, q float32, sampleRate int) (float32, float32, float32, float32, float32) {
	w0 := 2.0 * math.Pi * float64(center) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)
	return normalizedRBJ(
		alpha, 0, -alpha,
		1.0+alpha, -2.0*cosw0, 1.0-alpha,
	)
}

// PeakingCoefficients returns RBJ peaking-EQ coefficients for a dB gain.
func PeakingCoefficients(center, gainDB, q float32, sampleRate int) (float32, float32, float32, float32, float32) {
	a := math.Pow(10, float64(gainDB)/40.0)
	w0 := 2.0 * math.Pi * float64(center) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)
	return normalizedRBJ(
		1.0+alpha*a, -2.0*cosw0, 1.0-alpha*a,
		1.0+alpha/a, -2.0*cosw0, 1.0-alpha/a,
	)
}

// AllpassCoefficients returns first-order-like RBJ allpass biquad coefficients.
func AllpassCoefficients(center, q float32, sampleRate int) (float32, float32, float32, float32, float32) {
	w0 := 2.0 * math.Pi * float64(center) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)
	return normalizedRBJ(
		1.0-alpha, -2.0*cosw0, 1.0+alpha,
		1.0+alpha, -2.0*cosw0, 1.0-alpha,
	)
}

// NewLowpass creates a lowpass biquad filter
func NewLowpass(cutoff, q float32, sampleRate int) *Biquad {
	return NewBiquad(LowpassCoefficients(cutoff, q, sampleRate))
}

// NewHighpass creates a highpass biquad filter
func NewHighpass(cutoff, q float32, sampleRate int) *Biquad {
	return NewBiquad(HighpassCoefficients(cutoff, q, sampleRate))
}

// NewBandpass creates a bandpass biquad filter
func NewBandpass(center, q float32, sampleRate int) *Biquad {
	return NewBiquad(BandpassCoefficients(center, q, sampleRate))
}

// NewPeaking creates a peaking-EQ biquad filter
func NewPeaking(center, gainDB, q float32, sampleRate int) *Biquad {
	return NewBiquad(PeakingCoefficients(center, gainDB, q, sampleRate))
}

// NewAllpass creates an allpass biquad filter
func NewAllpass(center, q float32, sampleRate int) *Biquad {
	return NewBiquad(AllpassCoefficients(center, q, sampleRate))
}

// OnePole is a single-pole smoothing filter: y += c * (x - y).
type OnePole struct {
	coeff float32
	state float32
}

// NewOnePole creates a one-pole lowpass with the given smoothing coefficient in [0,1].
func NewOnePole(coeff float32) *OnePole {
	return &OnePole{coeff: Clamp(coeff, 0, 1)}
}

// Process filters one sample.
func (o *OnePole) Process(x float32) float32 {
	o.state += o.coeff * (x - o.state)
	o.state = FlushDenormals(o.state)
	return o.state
}

// SetCoeff updates the smoothing coefficient.
func (o *OnePole) SetCoeff(coeff float32) {
	o.coeff = Clamp(coeff, 0, 1)
}

// State returns the current filter state.
func (o *OnePole) State() float32 {
	return o.state
}

// Reset clears the filter state
func (o *OnePole) Reset() {
	o.state = 0
}

// DelayLine implements a circular buffer for delay
type DelayLine struct {
	buffer   []float32
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size
func NewDelayLine(size int) *DelayLine {
	if size < 1 {
		size = 1
	}
	return &DelayLine{
		buffer: make([]float32, size),
		size:   size,
	}
}

// Size returns the delay line length in samples.
func (d *DelayLine) Size() int {
	return d.size
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read reads a sample from the delay line at the given delay (in samples).
// The delay is clamped to the buffer length.
func (d *DelayLine) Read(delay int) float32 {
	if delay >= d.size {
		delay = d.size - 1
	}
	if delay < 0 {
		delay = 0
	}
	readPos := (d.writePos - delay + d.size) % d.size
	return d.buffer[readPos]
}

// ReadFractional reads with fractional delay using linear interpolation
func (d *DelayLine) ReadFractional(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)

	sample1 := d.Read(intDelay)
	sample2 := d.Read(intDelay + 1)

	// Linear interpolation
	return sample1 + frac*(sample2-sample1)
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// FlushDenormals converts denormal numbers to zero to avoid performance issues
func FlushDenormals(x float32) float32 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0.0
	}
	return x
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

package effects

import (
	"github.com/chewxy/math32"

	"github.com/sqrew/tunes-sub001/dsp"
	"github.com/sqrew/tunes-sub001/internal/simd"
)

// Distortion is a tanh waveshaper with drive and wet/dry mix.
type Distortion struct {
	drive autoParam
	mix   autoParam

	scratch []float32
}

// NewDistortion builds a distortion with drive >= 1 and mix in [0, 1].
func NewDistortion(drive, mix float32) *Distortion {
	d := &Distortion{}
	d.drive.set(clampParam("distortion drive", drive, 1, 100))
	d.mix.set(clampParam("distortion mix", mix, 0, 1))
	return d
}

// AutomateDrive attaches an automation curve to the drive.
func (d *Distortion) AutomateDrive(a *Automation) { d.drive.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (d *Distortion) AutomateMix(a *Automation) { d.mix.curve = a }

func (d *Distortion) Priority() int { return PriorityShaper }

func (d *Distortion) refresh(t float32) {
	d.drive.refresh(t)
	d.mix.refresh(t)
}

func (d *Distortion) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		d.refresh(t)
	}
	mix := d.mix.value
	if mix < bypassEpsilon {
		return x
	}
	return x*(1-mix) + math32.Tanh(x*d.drive.value)*mix
}

func (d *Distortion) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	if cap(d.scratch) < len(buf) {
		d.scratch = make([]float32, len(buf))
	}
	wet := d.scratch[:len(buf)]
	dt := 1 / float32(sampleRate)
	for i, x := range buf {
		if (n0+uint64(i))&automationMask == 0 {
			d.refresh(t0 + float32(i)*dt)
		}
		wet[i] = math32.Tanh(x * d.drive.value)
	}
	mix := d.mix.value
	if mix < bypassEpsilon {
		return
	}
	simd.Scale(buf, 1-mix)
	simd.Mix(buf, wet, mix)
}

func (d *Distortion) Reset() {}

// Saturation is a softer shaper blending tanh with a clipped cubic curve.
type Saturation struct {
	drive autoParam
	mix   autoParam
}

// NewSaturation builds a saturator with drive >= 1 and mix in [0, 1].
func NewSaturation(drive, mix float32) *Saturation {
	s := &Saturation{}
	s.drive.set(clampParam("saturation drive", drive, 1, 100))
	s.mix.set(clampParam("saturation mix", mix, 0, 1))
	return s
}

// AutomateMix attaches an automation curve to the wet/dry mix.
func (s *Saturation) AutomateMix(a *Automation) { s.mix.curve = a }

func (s *Saturation) Priority() int { return PriorityShaper }

func saturate(x, drive float32) float32 {
	v := x * drive
	soft := math32.Tanh(v)
	cubic := dsp.Clamp(v-v*v*v/3, -1, 1)
	return 0.5 * (soft + cubic)
}

func (s *Saturation) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		s.drive.refresh(t)
		s.mix.refresh(t)
	}
	mix := s.mix.value
	if mix < bypassEpsilon {
		return x
	}
	return x*(1-mix) + saturate(x, s.drive.value)*mix
}

func (s *Saturation) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return s.Process(x, sampleRate, t, n, 0)
	})
}

func (s *Saturation) Reset() {}

// Bitcrusher quantizes amplitude to a bit depth and reduces the effective
// sample rate with a sample-and-hold.
type Bitcrusher struct {
	bits       autoParam
	downsample autoParam
	mix        autoParam

	held    float32
	counter int
}

// NewBitcrusher builds a bitcrusher. bits in [1, 24]; downsample is the
// hold length in samples, >= 1.
func NewBitcrusher(bits, downsample, mix float32) *Bitcrusher {
	b := &Bitcrusher{}
	b.bits.set(clampParam("bitcrusher bits", bits, 1, 24))
	b.downsample.set(clampParam("bitcrusher downsample", downsample, 1, 256))
	b.mix.set(clampParam("bitcrusher mix", mix, 0, 1))
	return b
}

// AutomateBits attaches an automation curve to the bit depth.
func (b *Bitcrusher) AutomateBits(a *Automation) { b.bits.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (b *Bitcrusher) AutomateMix(a *Automation) { b.mix.curve = a }

func (b *Bitcrusher) Priority() int { return PriorityShaper }

func (b *Bitcrusher) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		b.bits.refresh(t)
		b.downsample.refresh(t)
		b.mix.refresh(t)
	}
	mix := b.mix.value
	if mix < bypassEpsilon {
		return x
	}
	if b.counter <= 0 {
		levels := math32.Exp2(dsp.Clamp(b.bits.value, 1, 24)) - 1
		b.held = math32.Round(dsp.Clamp(x, -1, 1)*levels*0.5) / (levels * 0.5)
		b.counter = int(b.downsample.value)
	}
	b.counter--
	return x*(1-mix) + b.held*mix
}

func (b *Bitcrusher) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return b.Process(x, sampleRate, t, n, 0)
	})
}

func (b *Bitcrusher) Reset() {
	b.held = 0
	b.counter = 0
}

package effects

import (
	"fmt"
	"os"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

// Convolver convolves the signal with an impulse response using partitioned
// overlap-add convolution. It runs at the time-effect stage like delay and
// reverb.
type Convolver struct {
	mix autoParam

	ir       []float32
	partSize int

	ola    *dspconv.StreamingOverlapAddT[float32, complex64]
	irRate int // sample rate the IR was prepared for; 0 means as-loaded

	inBlock  []float32
	outBlock []float32
	pending  int
	wet      []float32
}

// NewConvolver builds a convolver with the given impulse response and
// wet/dry mix. An empty IR degenerates to a unit impulse.
func NewConvolver(ir []float32, mix float32) *Convolver {
	c := &Convolver{partSize: 128}
	c.mix.set(clampParam("convolver mix", mix, 0, 1))
	c.SetIR(ir)
	return c
}

// AutomateMix attaches an automation curve to the wet/dry mix.
func (c *Convolver) AutomateMix(a *Automation) { c.mix.curve = a }

// SetIR replaces the impulse response and resets convolution history.
func (c *Convolver) SetIR(ir []float32) {
	if len(ir) == 0 {
		ir = []float32{1}
	}
	c.ir = ir
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, c.partSize)
	if err != nil {
		return
	}
	c.ola = ola
	c.inBlock = make([]float32, c.partSize)
	c.outBlock = make([]float32, c.partSize)
	c.pending = 0
}

// LoadIR reads an impulse response from a WAV file, down-mixing stereo to
// mono and resampling to the given rate.
func (c *Convolver) LoadIR(path string, sampleRate int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}

	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < numCh; ch++ {
			sum += buf.Data[i*numCh+ch]
		}
		mono[i] = sum / float32(numCh)
	}

	if srcRate != sampleRate {
		r, err := dspresample.NewForRates(
			float64(srcRate),
			float64(sampleRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return err
		}
		in64 := make([]float64, len(mono))
		for i, v := range mono {
			in64[i] = float64(v)
		}
		out64 := r.Process(in64)
		mono = make([]float32, len(out64))
		for i, v := range out64 {
			mono[i] = float32(v)
		}
	}
	c.irRate = sampleRate
	c.SetIR(mono)
	return nil
}

func (c *Convolver) Priority() int { return PriorityTime }

// Process convolves one sample. Internally the convolver works in partSize
// blocks, so the wet signal carries partSize samples of extra latency.
func (c *Convolver) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		c.mix.refresh(t)
	}
	mix := c.mix.value
	if mix < bypassEpsilon || c.ola == nil {
		return x
	}

	c.inBlock[c.pending] = x
	wet := c.outBlock[c.pending]
	c.pending++
	if c.pending == c.partSize {
		if err := c.ola.ProcessBlockTo(c.outBlock, c.inBlock); err != nil {
			copy(c.outBlock, c.inBlock)
		}
		c.pending = 0
	}
	return x*(1-mix) + wet*mix
}

func (c *Convolver) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return c.Process(x, sampleRate, t, n, 0)
	})
}

func (c *Convolver) Reset() {
	if c.ola != nil {
		c.ola.Reset()
	}
	for i := range c.inBlock {
		c.inBlock[i] = 0
		c.outBlock[i] = 0
	}
	c.pending = 0
}

package effects

import (
	"github.com/chewxy/math32"

	"github.com/sqrew/tunes-sub001/dsp"
)

// Chorus is a modulated delay without feedback. The read tap swings around a
// center delay of a few milliseconds, driven by a free-running sine LFO.
type Chorus struct {
	rate  autoParam // Hz
	depth autoParam // 0..1, scales the tap swing
	mix   autoParam

	line       *dsp.DelayLine
	sampleRate int
}

const (
	chorusCenterSec = 0.006
	chorusSwingSec  = 0.004 // keeps the tap inside 2..10 ms
)

// NewChorus builds a chorus with LFO rate in Hz, depth and mix in [0, 1].
func NewChorus(rate, depth, mix float32) *Chorus {
	c := &Chorus{}
	c.rate.set(clampParam("chorus rate", rate, 0.01, 20))
	c.depth.set(clampParam("chorus depth", depth, 0, 1))
	c.mix.set(clampParam("chorus mix", mix, 0, 1))
	return c
}

// AutomateRate attaches an automation curve to the LFO rate.
func (c *Chorus) AutomateRate(a *Automation) { c.rate.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (c *Chorus) AutomateMix(a *Automation) { c.mix.curve = a }

func (c *Chorus) Priority() int { return PriorityModulation }

func (c *Chorus) ensureLine(sampleRate int) {
	if c.line == nil || c.sampleRate != sampleRate {
		max := int((chorusCenterSec+chorusSwingSec)*float32(sampleRate)) + 2
		c.line = dsp.NewDelayLine(max)
		c.sampleRate = sampleRate
	}
}

func (c *Chorus) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		c.rate.refresh(t)
		c.depth.refresh(t)
		c.mix.refresh(t)
	}
	mix := c.mix.value
	c.ensureLine(sampleRate)
	c.line.Write(x)
	if mix < bypassEpsilon {
		return x
	}
	delaySec := chorusCenterSec + chorusSwingSec*c.depth.value*lfoSine(c.rate.value, t)
	wet := c.line.ReadFractional(delaySec * float32(sampleRate))
	return x*(1-mix) + wet*mix
}

func (c *Chorus) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return c.Process(x, sampleRate, t, n, 0)
	})
}

func (c *Chorus) Reset() {
	if c.line != nil {
		c.line.Reset()
	}
}

// Flanger is a short modulated delay with feedback, sweeping between 1 and
// 5 ms.
type Flanger struct {
	rate     autoParam
	depth    autoParam
	feedback autoParam
	mix      autoParam

	line       *dsp.DelayLine
	sampleRate int
}

const (
	flangerCenterSec = 0.003
	flangerSwingSec  = 0.002
)

// NewFlanger builds a flanger with LFO rate in Hz, depth in [0, 1], feedback
// in [0, 0.95] and mix in [0, 1].
func NewFlanger(rate, depth, feedback, mix float32) *Flanger {
	f := &Flanger{}
	f.rate.set(clampParam("flanger rate", rate, 0.01, 20))
	f.depth.set(clampParam("flanger depth", depth, 0, 1))
	f.feedback.set(clampParam("flanger feedback", feedback, 0, 0.95))
	f.mix.set(clampParam("flanger mix", mix, 0, 1))
	return f
}

// AutomateMix attaches an automation curve to the wet/dry mix.
func (f *Flanger) AutomateMix(a *Automation) { f.mix.curve = a }

func (f *Flanger) Priority() int { return PriorityModulation }

func (f *Flanger) ensureLine(sampleRate int) {
	if f.line == nil || f.sampleRate != sampleRate {
		max := int((flangerCenterSec+flangerSwingSec)*float32(sampleRate)) + 2
		f.line = dsp.NewDelayLine(max)
		f.sampleRate = sampleRate
	}
}

func (f *Flanger) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		f.rate.refresh(t)
		f.depth.refresh(t)
		f.feedback.refresh(t)
		f.mix.refresh(t)
	}
	mix := f.mix.value
	f.ensureLine(sampleRate)
	delaySec := flangerCenterSec + flangerSwingSec*f.depth.value*lfoSine(f.rate.value, t)
	wet := f.line.ReadFractional(delaySec * float32(sampleRate))
	f.line.Write(x + wet*f.feedback.value)
	if mix < bypassEpsilon {
		return x
	}
	return x*(1-mix) + wet*mix
}

func (f *Flanger) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return f.Process(x, sampleRate, t, n, 0)
	})
}

func (f *Flanger) Reset() {
	if f.line != nil {
		f.line.Reset()
	}
}

// Phaser cascades first-order allpass sections whose corner frequency is
// swept by a sine LFO, with optional feedback from the last stage.
type Phaser struct {
	rate     autoParam
	depth    autoParam
	feedback autoParam
	mix      autoParam

	stages []allpass1
	last   float32
}

type allpass1 struct {
	x1, y1 float32
}

func (a *allpass1) process(x, coeff float32) float32 {
	y := -coeff*x + a.x1 + coeff*a.y1
	a.x1 = x
	a.y1 = dsp.FlushDenormals(y)
	return y
}

// NewPhaser builds a phaser with the given number of allpass stages
// (clamped to 2..8), LFO rate in Hz, sweep depth and feedback and mix in
// [0, 1].
func NewPhaser(stages int, rate, depth, feedback, mix float32) *Phaser {
	if stages < 2 {
		stages = 2
	}
	if stages > 8 {
		stages = 8
	}
	p := &Phaser{stages: make([]allpass1, stages)}
	p.rate.set(clampParam("phaser rate", rate, 0.01, 10))
	p.depth.set(clampParam("phaser depth", depth, 0, 1))
	p.feedback.set(clampParam("phaser feedback", feedback, 0, 0.95))
	p.mix.set(clampParam("phaser mix", mix, 0, 1))
	return p
}

// AutomateRate attaches an automation curve to the LFO rate.
func (p *Phaser) AutomateRate(a *Automation) { p.rate.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (p *Phaser) AutomateMix(a *Automation) { p.mix.curve = a }

func (p *Phaser) Priority() int { return PriorityModulation }

func (p *Phaser) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		p.rate.refresh(t)
		p.depth.refresh(t)
		p.feedback.refresh(t)
		p.mix.refresh(t)
	}
	mix := p.mix.value
	if mix < bypassEpsilon {
		return x
	}

	// Sweep the allpass corner between 200 Hz and 2 kHz.
	sweep := 0.5 + 0.5*lfoSine(p.rate.value, t)
	fc := 200 + 1800*sweep*p.depth.value
	w := math32.Tan(math32.Pi * fc / float32(sampleRate))
	coeff := (1 - w) / (1 + w)

	v := x + p.last*p.feedback.value
	for i := range p.stages {
		v = p.stages[i].process(v, coeff)
	}
	p.last = v
	return x*(1-mix) + v*mix
}

func (p *Phaser) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return p.Process(x, sampleRate, t, n, 0)
	})
}

func (p *Phaser) Reset() {
	for i := range p.stages {
		p.stages[i] = allpass1{}
	}
	p.last = 0
}

// RingMod multiplies the signal by a sine carrier.
type RingMod struct {
	freq autoParam
	mix  autoParam
}

// NewRingMod builds a ring modulator with carrier frequency in Hz and mix in
// [0, 1].
func NewRingMod(freq, mix float32) *RingMod {
	r := &RingMod{}
	r.freq.set(clampParam("ringmod freq", freq, 0.1, 20000))
	r.mix.set(clampParam("ringmod mix", mix, 0, 1))
	return r
}

// AutomateFreq attaches an automation curve to the carrier frequency.
func (r *RingMod) AutomateFreq(a *Automation) { r.freq.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (r *RingMod) AutomateMix(a *Automation) { r.mix.curve = a }

func (r *RingMod) Priority() int { return PriorityModulation }

func (r *RingMod) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		r.freq.refresh(t)
		r.mix.refresh(t)
	}
	mix := r.mix.value
	if mix < bypassEpsilon {
		return x
	}
	return x*(1-mix) + x*lfoSine(r.freq.value, t)*mix
}

func (r *RingMod) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return r.Process(x, sampleRate, t, n, 0)
	})
}

func (r *RingMod) Reset() {}

// Tremolo modulates amplitude with a sine LFO. Depth 1 swings the gain all
// the way to zero.
type Tremolo struct {
	rate  autoParam
	depth autoParam
}

// NewTremolo builds a tremolo with LFO rate in Hz and depth in [0, 1].
func NewTremolo(rate, depth float32) *Tremolo {
	tr := &Tremolo{}
	tr.rate.set(clampParam("tremolo rate", rate, 0.01, 50))
	tr.depth.set(clampParam("tremolo depth", depth, 0, 1))
	return tr
}

// AutomateDepth attaches an automation curve to the depth.
func (tr *Tremolo) AutomateDepth(a *Automation) { tr.depth.curve = a }

func (tr *Tremolo) Priority() int { return PriorityModulation }

func (tr *Tremolo) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		tr.rate.refresh(t)
		tr.depth.refresh(t)
	}
	gain := 1 - tr.depth.value*(0.5+0.5*lfoSine(tr.rate.value, t))
	return x * gain
}

func (tr *Tremolo) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return tr.Process(x, sampleRate, t, n, 0)
	})
}

func (tr *Tremolo) Reset() {}

// AutoPan swings the stereo position with a sine LFO. It keeps the mono
// signal untouched; the panner queries Offset during the stereo stage.
type AutoPan struct {
	rate  autoParam
	depth autoParam
}

// NewAutoPan builds an auto-panner with LFO rate in Hz and depth in [0, 1].
func NewAutoPan(rate, depth float32) *AutoPan {
	ap := &AutoPan{}
	ap.rate.set(clampParam("autopan rate", rate, 0.01, 50))
	ap.depth.set(clampParam("autopan depth", depth, 0, 1))
	return ap
}

// AutomateDepth attaches an automation curve to the depth.
func (ap *AutoPan) AutomateDepth(a *Automation) { ap.depth.curve = a }

func (ap *AutoPan) Priority() int { return PriorityModulation }

// Offset returns the pan offset in [-depth, depth] at absolute time t.
func (ap *AutoPan) Offset(t float32, n uint64) float32 {
	if n&automationMask == 0 {
		ap.rate.refresh(t)
		ap.depth.refresh(t)
	}
	return ap.depth.value * lfoSine(ap.rate.value, t)
}

// Process is the identity; panning happens at the stereo stage.
func (ap *AutoPan) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	return x
}

func (ap *AutoPan) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
}

func (ap *AutoPan) Reset() {}

package effects

import "github.com/sqrew/tunes-sub001/dsp"

// maxDelaySeconds bounds the delay line allocation; automated delay times
// are clamped to it at read time.
const maxDelaySeconds = 2.0

// Delay is a feedback delay. Feedback sits on the wet path: the line stores
// input plus scaled delayed signal, so each echo decays by the feedback
// factor.
type Delay struct {
	time     autoParam
	feedback autoParam
	mix      autoParam

	line       *dsp.DelayLine
	sampleRate int
}

// NewDelay builds a delay with time in seconds, feedback in [0, 0.99] and
// wet/dry mix in [0, 1]. The delay line is sized on first use for the
// rendering sample rate.
func NewDelay(time, feedback, mix float32) *Delay {
	d := &Delay{}
	d.time.set(clampParam("delay time", time, 0, maxDelaySeconds))
	d.feedback.set(clampParam("delay feedback", feedback, 0, 0.99))
	d.mix.set(clampParam("delay mix", mix, 0, 1))
	return d
}

// AutomateTime attaches an automation curve to the delay time.
func (d *Delay) AutomateTime(a *Automation) { d.time.curve = a }

// AutomateFeedback attaches an automation curve to the feedback amount.
func (d *Delay) AutomateFeedback(a *Automation) { d.feedback.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (d *Delay) AutomateMix(a *Automation) { d.mix.curve = a }

func (d *Delay) Priority() int { return PriorityTime }

func (d *Delay) refresh(t float32) {
	d.time.refresh(t)
	d.feedback.refresh(t)
	d.mix.refresh(t)
}

func (d *Delay) ensureLine(sampleRate int) {
	if d.line == nil || d.sampleRate != sampleRate {
		d.line = dsp.NewDelayLine(int(maxDelaySeconds*float32(sampleRate)) + 2)
		d.sampleRate = sampleRate
	}
}

func (d *Delay) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		d.refresh(t)
	}
	mix := d.mix.value
	if mix < bypassEpsilon {
		return x
	}
	d.ensureLine(sampleRate)

	samples := dsp.Clamp(d.time.value, 0, maxDelaySeconds) * float32(sampleRate)
	wet := d.line.ReadFractional(samples)
	d.line.Write(x + wet*d.feedback.value)
	return x*(1-mix) + wet*mix
}

func (d *Delay) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return d.Process(x, sampleRate, t, n, 0)
	})
}

func (d *Delay) Reset() {
	if d.line != nil {
		d.line.Reset()
	}
}

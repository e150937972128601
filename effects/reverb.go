package effects

import "github.com/sqrew/tunes-sub001/dsp"

// combPrimes are the base comb delay lengths in samples at the 44.1 kHz
// reference rate. Prime lengths keep the comb resonances from stacking.
var combPrimes = [8]int{1117, 1193, 1279, 1361, 1427, 1493, 1559, 1619}

// comb is one feedback comb filter with a one-pole damping filter in the
// feedback path. The line is sized for the largest room; length is the
// active tap and may move while the tail keeps ringing.
type comb struct {
	line   *dsp.DelayLine
	length int
	damp   float32
	state  float32
}

func (c *comb) process(x, feedback float32) float32 {
	out := c.line.Read(c.length)
	c.state = dsp.FlushDenormals(out + c.damp*(c.state-out))
	c.line.Write(x + c.state*feedback)
	return out
}

// Reverb is a parallel bank of eight damped feedback combs. Room size scales
// both the comb delays and the feedback amount.
type Reverb struct {
	roomSize autoParam
	damp     autoParam
	mix      autoParam

	combs      [8]comb
	builtRoom  float32
	sampleRate int
}

// NewReverb builds a reverb with room size, damping and wet/dry mix all in
// [0, 1].
func NewReverb(roomSize, damp, mix float32) *Reverb {
	r := &Reverb{builtRoom: -1}
	r.roomSize.set(clampParam("reverb room size", roomSize, 0, 1))
	r.damp.set(clampParam("reverb damp", damp, 0, 1))
	r.mix.set(clampParam("reverb mix", mix, 0, 1))
	return r
}

// AutomateRoomSize attaches an automation curve to the room size.
func (r *Reverb) AutomateRoomSize(a *Automation) { r.roomSize.curve = a }

// AutomateDamp attaches an automation curve to the damping amount.
func (r *Reverb) AutomateDamp(a *Automation) { r.damp.curve = a }

// AutomateMix attaches an automation curve to the wet/dry mix.
func (r *Reverb) AutomateMix(a *Automation) { r.mix.curve = a }

func (r *Reverb) Priority() int { return PriorityTime }

func (r *Reverb) refresh(t float32) {
	r.roomSize.refresh(t)
	r.damp.refresh(t)
	r.mix.refresh(t)
}

// ensureCombs allocates the comb bank for the sample rate and retunes the
// active tap lengths. Lines are sized for the largest room, so a room-size
// change under automation moves the taps without discarding tail state.
func (r *Reverb) ensureCombs(sampleRate int) {
	if r.sampleRate != sampleRate {
		maxScale := 3 * float32(sampleRate) / 44100
		for i := range r.combs {
			r.combs[i].line = dsp.NewDelayLine(int(float32(combPrimes[i])*maxScale) + 1)
			r.combs[i].state = 0
		}
		r.sampleRate = sampleRate
		r.builtRoom = -1
	}
	room := dsp.Clamp(r.roomSize.value, 0, 1)
	if r.builtRoom == room {
		return
	}
	scale := (1 + room*2) * float32(sampleRate) / 44100
	for i := range r.combs {
		length := int(float32(combPrimes[i]) * scale)
		if length < 1 {
			length = 1
		}
		r.combs[i].length = length
	}
	r.builtRoom = room
}

func (r *Reverb) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		r.refresh(t)
	}
	mix := r.mix.value
	if mix < bypassEpsilon {
		return x
	}
	r.ensureCombs(sampleRate)

	feedback := 0.5 + dsp.Clamp(r.roomSize.value, 0, 1)*0.48
	damp := dsp.Clamp(r.damp.value, 0, 1)
	var wet float32
	for i := range r.combs {
		r.combs[i].damp = damp
		wet += r.combs[i].process(x, feedback)
	}
	wet /= 8
	return x*(1-mix) + wet*mix
}

func (r *Reverb) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return r.Process(x, sampleRate, t, n, 0)
	})
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		if r.combs[i].line != nil {
			r.combs[i].line.Reset()
		}
		r.combs[i].state = 0
	}
}

// Package effects implements the insert effect units used by track and bus
// chains: delays, reverb, dynamics, waveshapers, modulation effects and EQs.
// Units process float32 audio one sample or one block at a time and re-sample
// their automation curves every 64 samples.
package effects

import (
	"log"
	"math"
	"sort"

	"github.com/chewxy/math32"
)

// automationMask gates parameter re-sampling: parameters refresh whenever
// the absolute sample counter crosses a 64-sample boundary.
const automationMask = 63

// bypassEpsilon is the wet/dry mix level below which a unit passes input
// through untouched.
const bypassEpsilon = 1e-4

// Chain execution priorities. Lower runs earlier.
const (
	PriorityGate       = 10
	PriorityCompressor = 20
	PriorityEQ         = 30
	PriorityShaper     = 40
	PriorityModulation = 50
	PriorityTime       = 70
	PriorityLimiter    = 100
)

// Unit is a mono insert effect. Process handles one sample; t is the absolute
// time of the sample in seconds and n its absolute index, both used for
// automation re-sampling and deterministic LFOs. side carries the sidechain
// detector sample for units that listen to one; all others ignore it.
type Unit interface {
	Process(x float32, sampleRate int, t float32, n uint64, side float32) float32
	ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32)
	Reset()
	Priority() int
}

// StereoLinked is implemented by dynamics units that derive one gain from
// both channels and apply it to both.
type StereoLinked interface {
	Unit
	ProcessStereo(l, r []float32, sampleRate int, t0 float32, n0 uint64, side []float32)
}

// blockProcess runs a per-sample function over a block, advancing time and
// the sample counter. It is the shared ProcessBlock fallback for units whose
// inner loop does not vectorize.
func blockProcess(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32, fn func(x float32, t float32, n uint64, s float32) float32) {
	dt := 1 / float32(sampleRate)
	for i := range buf {
		var s float32
		if side != nil {
			s = side[i]
		}
		buf[i] = fn(buf[i], t0+float32(i)*dt, n0+uint64(i), s)
	}
}

// clampParam clamps v into [lo, hi], logging once per offending construction.
func clampParam(name string, v, lo, hi float32) float32 {
	if v < lo {
		log.Printf("effects: %s %g below %g, clamped", name, v, lo)
		return lo
	}
	if v > hi {
		log.Printf("effects: %s %g above %g, clamped", name, v, hi)
		return hi
	}
	return v
}

// envCoeff converts a time constant in seconds to a one-pole smoothing
// coefficient at the given rate. Non-positive times snap instantly.
func envCoeff(seconds float32, sampleRate int) float32 {
	if seconds <= 0 {
		return 0
	}
	return float32(math.Exp(-1 / (float64(seconds) * float64(sampleRate))))
}

// lfoSine evaluates a free-running sine LFO at absolute time t. Using
// absolute time keeps modulation effects deterministic and stateless.
func lfoSine(rateHz, t float32) float32 {
	return math32.Sin(2 * math32.Pi * rateHz * t)
}

// Chain is an ordered list of units. Execution order follows unit priority;
// units of equal priority keep their insertion order. The sorted order is
// cached and rebuilt only when the chain changes.
type Chain struct {
	units  []Unit
	sorted []Unit
	dirty  bool
}

// Add appends a unit and invalidates the cached order.
func (c *Chain) Add(u Unit) {
	c.units = append(c.units, u)
	c.dirty = true
}

// Len reports the number of units in the chain.
func (c *Chain) Len() int { return len(c.units) }

// Units returns the units in execution order.
func (c *Chain) Units() []Unit {
	if c.dirty || c.sorted == nil {
		c.sorted = make([]Unit, len(c.units))
		copy(c.sorted, c.units)
		sort.SliceStable(c.sorted, func(i, j int) bool {
			return c.sorted[i].Priority() < c.sorted[j].Priority()
		})
		c.dirty = false
	}
	return c.sorted
}

// ProcessBlock runs the block through every unit in priority order. side is
// handed to each unit; only sidechain listeners use it.
func (c *Chain) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	for _, u := range c.Units() {
		u.ProcessBlock(buf, sampleRate, t0, n0, side)
	}
}

// Reset clears the state of every unit.
func (c *Chain) Reset() {
	for _, u := range c.units {
		u.Reset()
	}
}

// Rack holds at most one unit of each kind for a track. Slots left nil are
// skipped; the assembled chain is cached until a slot changes.
type Rack struct {
	Gate       *Gate
	Compressor *Compressor
	EQ         *EQ3
	Parametric *ParametricEQ
	Distortion *Distortion
	Saturation *Saturation
	Bitcrusher *Bitcrusher
	Chorus     *Chorus
	Flanger    *Flanger
	Phaser     *Phaser
	RingMod    *RingMod
	Tremolo    *Tremolo
	AutoPan    *AutoPan
	Delay      *Delay
	Reverb     *Reverb
	Convolver  *Convolver
	Limiter    *Limiter

	chain *Chain
}

// Chain assembles the occupied slots into a priority-ordered chain.
func (r *Rack) Chain() *Chain {
	if r.chain != nil {
		return r.chain
	}
	c := &Chain{}
	if r.Gate != nil {
		c.Add(r.Gate)
	}
	if r.Compressor != nil {
		c.Add(r.Compressor)
	}
	if r.EQ != nil {
		c.Add(r.EQ)
	}
	if r.Parametric != nil {
		c.Add(r.Parametric)
	}
	if r.Distortion != nil {
		c.Add(r.Distortion)
	}
	if r.Saturation != nil {
		c.Add(r.Saturation)
	}
	if r.Bitcrusher != nil {
		c.Add(r.Bitcrusher)
	}
	if r.Chorus != nil {
		c.Add(r.Chorus)
	}
	if r.Flanger != nil {
		c.Add(r.Flanger)
	}
	if r.Phaser != nil {
		c.Add(r.Phaser)
	}
	if r.RingMod != nil {
		c.Add(r.RingMod)
	}
	if r.Tremolo != nil {
		c.Add(r.Tremolo)
	}
	if r.AutoPan != nil {
		c.Add(r.AutoPan)
	}
	if r.Delay != nil {
		c.Add(r.Delay)
	}
	if r.Reverb != nil {
		c.Add(r.Reverb)
	}
	if r.Convolver != nil {
		c.Add(r.Convolver)
	}
	if r.Limiter != nil {
		c.Add(r.Limiter)
	}
	r.chain = c
	return c
}

// Invalidate drops the cached chain after a slot assignment.
func (r *Rack) Invalidate() { r.chain = nil }

// Empty reports whether no slot is occupied.
func (r *Rack) Empty() bool { return r.Chain().Len() == 0 }

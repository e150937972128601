package mixer

import (
	"sort"

	"github.com/sqrew/tunes-sub001/effects"
)

// stereoSlot is one effect position in a stereo chain: either a
// stereo-linked dynamics unit, or an independent unit instance per channel.
type stereoSlot struct {
	linked      effects.StereoLinked
	left, right effects.Unit
}

func (s *stereoSlot) priority() int {
	if s.linked != nil {
		return s.linked.Priority()
	}
	return s.left.Priority()
}

// stereoChain runs effect units over stereo block pairs. Per-channel units
// keep separate state per channel; stereo-linked units see both channels.
type stereoChain struct {
	slots  []*stereoSlot
	sorted []*stereoSlot
	dirty  bool
}

func (c *stereoChain) add(s *stereoSlot) {
	c.slots = append(c.slots, s)
	c.dirty = true
}

func (c *stereoChain) ordered() []*stereoSlot {
	if c.dirty || c.sorted == nil {
		c.sorted = make([]*stereoSlot, len(c.slots))
		copy(c.sorted, c.slots)
		sort.SliceStable(c.sorted, func(i, j int) bool {
			return c.sorted[i].priority() < c.sorted[j].priority()
		})
		c.dirty = false
	}
	return c.sorted
}

func (c *stereoChain) processBlock(l, r []float32, sampleRate int, t0 float32, n0 uint64) {
	for _, s := range c.ordered() {
		if s.linked != nil {
			s.linked.ProcessStereo(l, r, sampleRate, t0, n0, nil)
			continue
		}
		s.left.ProcessBlock(l, sampleRate, t0, n0, nil)
		s.right.ProcessBlock(r, sampleRate, t0, n0, nil)
	}
}

func (c *stereoChain) reset() {
	for _, s := range c.slots {
		if s.linked != nil {
			s.linked.Reset()
			continue
		}
		s.left.Reset()
		s.right.Reset()
	}
}

// compressors returns every compressor reachable from the chain, for
// sidechain resolution.
func (c *stereoChain) compressors() []*effects.Compressor {
	var out []*effects.Compressor
	for _, s := range c.slots {
		if comp, ok := s.linked.(*effects.Compressor); ok && comp != nil {
			out = append(out, comp)
		}
		if comp, ok := s.left.(*effects.Compressor); ok && comp != nil {
			out = append(out, comp)
		}
		if comp, ok := s.right.(*effects.Compressor); ok && comp != nil {
			out = append(out, comp)
		}
	}
	return out
}

// Bus groups tracks into a stereo submix with its own effect chain, volume
// and pan. Busses form a strict two-level graph: tracks feed busses, busses
// feed the master.
type Bus struct {
	name   string
	id     int
	volume float32
	pan    float32

	chain  stereoChain
	tracks []*trackState

	left  []float32
	right []float32

	// outLeft/outRight hold the bus output of the previous block for
	// sidechain taps that would otherwise form a cycle in time.
	outLeft  []float32
	outRight []float32
}

// Name returns the bus name.
func (b *Bus) Name() string { return b.name }

// ID returns the bus ID; the default bus is 0.
func (b *Bus) ID() int { return b.id }

// Volume sets the bus gain.
func (b *Bus) Volume(v float32) *Bus {
	b.volume = v
	return b
}

// Pan sets the bus pan position in [0, 1].
func (b *Bus) Pan(p float32) *Bus {
	b.pan = p
	return b
}

// Effect attaches an independent unit instance per channel. Both arguments
// must be distinct instances of the same effect configuration; sharing one
// instance would interleave channel state.
func (b *Bus) Effect(left, right effects.Unit) *Bus {
	b.chain.add(&stereoSlot{left: left, right: right})
	return b
}

// StereoLinked attaches a stereo-linked dynamics unit (compressor or
// limiter) that derives one gain from both channels.
func (b *Bus) StereoLinked(u effects.StereoLinked) *Bus {
	b.chain.add(&stereoSlot{linked: u})
	return b
}

func (b *Bus) ensureBuffers(blockSize int) {
	if cap(b.left) < blockSize {
		b.left = make([]float32, blockSize)
		b.right = make([]float32, blockSize)
		b.outLeft = make([]float32, blockSize)
		b.outRight = make([]float32, blockSize)
	}
	b.left = b.left[:blockSize]
	b.right = b.right[:blockSize]
	b.outLeft = b.outLeft[:blockSize]
	b.outRight = b.outRight[:blockSize]
}

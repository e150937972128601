// Package mixer turns a finished composition into PCM: it schedules voices
// per block, runs track and bus effect chains, resolves sidechain routing,
// pans tracks into stereo busses and folds everything into a master buffer.
package mixer

import (
	"log"
	"sync"

	"github.com/chewxy/math32"

	"github.com/sqrew/tunes-sub001/dsp"
	"github.com/sqrew/tunes-sub001/effects"
	"github.com/sqrew/tunes-sub001/internal/simd"
	"github.com/sqrew/tunes-sub001/music"
)

// DefaultBlockSize is the render block length when the host passes 0.
const DefaultBlockSize = 256

var logSIMDOnce sync.Once

// Mixer is the render-ready form of a composition. New runs the finalize
// step once; afterwards the mixer owns its state exclusively and is not
// safe for concurrent use.
type Mixer struct {
	comp *music.Composition

	tracks      []*trackState
	trackByName map[string]*trackState

	busses    []*Bus // ID order
	busByName map[string]*Bus
	busOrder  []*Bus // sidechain-topological order

	master stereoChain

	trackLinks []scLink
	busLinks   map[*Bus][]scLink
	downmixBuf []float32

	masterL []float32
	masterR []float32
}

// New finalizes a composition into a mixer: validation, ID assignment, bus
// construction and sidechain resolution. Conflicting spatial positions on a
// track panic here, by design; recoverable problems return errors.
func New(comp *music.Composition) (*Mixer, error) {
	if err := comp.Validate(); err != nil {
		return nil, err
	}

	logSIMDOnce.Do(func() {
		log.Printf("mixer: vector dispatch: %v", simd.Info())
	})

	m := &Mixer{
		comp:        comp,
		trackByName: map[string]*trackState{},
		busByName:   map[string]*Bus{},
		busLinks:    map[*Bus][]scLink{},
	}

	for _, name := range comp.BusNames() {
		b := &Bus{name: name, id: comp.BusID(name), volume: 1, pan: 0.5}
		m.busses = append(m.busses, b)
		m.busByName[name] = b
	}

	for _, t := range comp.Tracks() {
		ts := newTrackState(t, comp.Seed)
		bus := m.busByName[t.BusName]
		if bus == nil {
			// Bus name set directly on the field without registration.
			comp.BusID(t.BusName)
			bus = &Bus{name: t.BusName, id: comp.BusID(t.BusName), volume: 1, pan: 0.5}
			m.busses = append(m.busses, bus)
			m.busByName[t.BusName] = bus
		}
		ts.bus = bus
		bus.tracks = append(bus.tracks, ts)
		m.tracks = append(m.tracks, ts)
		m.trackByName[t.Name] = ts
	}

	m.resolveSidechains()
	return m, nil
}

// Bus returns the named bus for attaching effects, creating it if the
// composition never referenced the name. Adding or changing sidechain
// sources afterwards requires Finalize again.
func (m *Mixer) Bus(name string) *Bus {
	if b, ok := m.busByName[name]; ok {
		return b
	}
	b := &Bus{name: name, id: m.comp.BusID(name), volume: 1, pan: 0.5}
	m.busses = append(m.busses, b)
	m.busByName[name] = b
	m.busOrder = append(m.busOrder, b)
	return b
}

// Master attaches an independent per-channel unit pair to the master chain.
func (m *Mixer) Master(left, right effects.Unit) *Mixer {
	m.master.add(&stereoSlot{left: left, right: right})
	return m
}

// MasterLinked attaches a stereo-linked unit, typically the final limiter,
// to the master chain.
func (m *Mixer) MasterLinked(u effects.StereoLinked) *Mixer {
	m.master.add(&stereoSlot{linked: u})
	return m
}

// Finalize re-runs sidechain resolution. It is idempotent; New already ran
// it once. Call it after attaching bus effects with sidechain sources.
func (m *Mixer) Finalize() {
	m.resolveSidechains()
}

// Duration returns the composition length in seconds.
func (m *Mixer) Duration() float32 {
	return m.comp.End()
}

// Render produces the full interleaved stereo PCM of the composition at the
// given sample rate and block size. Rendering is total: malformed events
// degrade to silence with a logged warning, and the function never fails.
func (m *Mixer) Render(sampleRate, blockSize int) []float32 {
	if sampleRate <= 0 {
		sampleRate = music.DefaultSampleRate
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	total := int(m.comp.End()*float32(sampleRate) + 0.5)
	out := make([]float32, total*2)
	if total == 0 {
		return out
	}

	m.resetRenderState(blockSize)

	for s0 := 0; s0 < total; s0 += blockSize {
		n := blockSize
		if s0+n > total {
			n = total - s0
		}
		m.renderInto(out[s0*2:(s0+n)*2], uint64(s0), n, sampleRate)
	}
	return out
}

// renderInto renders one block of n frames into dst (interleaved stereo).
func (m *Mixer) renderInto(dst []float32, s0 uint64, n, sampleRate int) {
	// 1. Voice mixes for every track.
	for _, ts := range m.tracks {
		ts.ensureBuffers(n)
		ts.renderVoices(s0, sampleRate)
	}

	// 2. Track-chain sidechain detectors, then track chains.
	m.feedTrackLinks(sampleRate)
	for _, ts := range m.tracks {
		ts.runChain(s0, sampleRate)
	}

	// 3. Pan tracks into their bus accumulators.
	for _, b := range m.busses {
		b.ensureBuffers(n)
		simd.Zero(b.left)
		simd.Zero(b.right)
	}
	for _, ts := range m.tracks {
		m.panTrack(ts, s0, sampleRate)
	}

	// 4. Bus chains in sidechain order, then bus volume/pan into master.
	if cap(m.masterL) < n {
		m.masterL = make([]float32, n)
		m.masterR = make([]float32, n)
	}
	masterL := m.masterL[:n]
	masterR := m.masterR[:n]
	simd.Zero(masterL)
	simd.Zero(masterR)

	t0 := float32(s0) / float32(sampleRate)
	for _, b := range m.busOrder {
		m.feedBusLinks(b, sampleRate)
		b.chain.processBlock(b.left, b.right, sampleRate, t0, s0)

		gl, gr := panGains(b.pan)
		// Normalize so a centered bus passes at unity.
		norm := b.volume * math32.Sqrt2
		simd.Scale(b.left, gl*norm)
		simd.Scale(b.right, gr*norm)
		copy(b.outLeft, b.left)
		copy(b.outRight, b.right)

		simd.Add(masterL, b.left)
		simd.Add(masterR, b.right)
	}

	// 5. Master chain, headroom clamp, interleave.
	m.master.processBlock(masterL, masterR, sampleRate, t0, s0)
	for i := 0; i < n; i++ {
		dst[i*2] = dsp.Clamp(masterL[i], -2, 2)
		dst[i*2+1] = dsp.Clamp(masterR[i], -2, 2)
	}
}

// panTrack spreads a track's chain output into its bus accumulator using
// either the event's spatial position or the equal-power pan, modulated per
// sample by AutoPan and the track's modulation routes.
func (m *Mixer) panTrack(ts *trackState, s0 uint64, sampleRate int) {
	t := ts.track
	left, right := ts.bus.left, ts.bus.right

	if ts.pos != nil {
		// Spatial position overrides pan and AutoPan entirely.
		gl, gr := spatialGains(ts.pos)
		gl *= t.Volume
		gr *= t.Volume
		for i, x := range ts.chainBuf {
			left[i] += x * gl
			right[i] += x * gr
		}
		return
	}

	static := ts.autopan == nil && len(t.Mods) == 0
	if static {
		gl, gr := panGains(t.Pan)
		gl *= t.Volume
		gr *= t.Volume
		for i, x := range ts.chainBuf {
			left[i] += x * gl
			right[i] += x * gr
		}
		return
	}

	dt := 1 / float32(sampleRate)
	t0 := float32(s0) / float32(sampleRate)
	for i, x := range ts.chainBuf {
		now := t0 + float32(i)*dt
		pan := t.Pan
		vol := t.Volume
		if ts.autopan != nil {
			pan += ts.autopan.Offset(now, s0+uint64(i))
		}
		for _, mod := range t.Mods {
			osc := mod.Depth * math32.Sin(2*math32.Pi*mod.RateHz*now)
			switch mod.Target {
			case music.ModPan:
				pan += osc
			case music.ModVolume:
				vol *= 1 + osc
			}
		}
		if vol < 0 {
			vol = 0
		}
		gl, gr := panGains(pan)
		left[i] += x * gl * vol
		right[i] += x * gr * vol
	}
}

// resetRenderState rewinds every track and zeroes effect and bus state so
// repeated renders are bit-identical.
func (m *Mixer) resetRenderState(blockSize int) {
	for _, ts := range m.tracks {
		ts.ensureBuffers(blockSize)
		ts.reset()
	}
	for _, b := range m.busses {
		b.ensureBuffers(blockSize)
		b.chain.reset()
		simd.Zero(b.outLeft)
		simd.Zero(b.outRight)
	}
	m.master.reset()
}

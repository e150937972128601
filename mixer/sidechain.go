package mixer

import (
	"log"

	"github.com/sqrew/tunes-sub001/effects"
)

// scLink is one resolved sidechain route: a compressor listening to a track
// or bus. Exactly one of srcTrack/srcBus is set.
type scLink struct {
	comp     *effects.Compressor
	srcTrack *trackState
	srcBus   *Bus
}

// resolveSidechains walks every track rack and bus chain, resolving named
// sidechain sources to render-time states. Unknown names are logged and the
// compressor falls back to its own input. Returns the track-chain links and
// the per-bus links.
func (m *Mixer) resolveSidechains() {
	m.trackLinks = nil
	m.busLinks = map[*Bus][]scLink{}

	resolve := func(owner string, comp *effects.Compressor) (scLink, bool) {
		name := comp.SidechainSource()
		if name == "" {
			return scLink{}, false
		}
		if ts, ok := m.trackByName[name]; ok {
			return scLink{comp: comp, srcTrack: ts}, true
		}
		if b, ok := m.busByName[name]; ok {
			return scLink{comp: comp, srcBus: b}, true
		}
		log.Printf("mixer: %s: sidechain source %q not found, using self-sidechain", owner, name)
		comp.SetSidechain("")
		return scLink{}, false
	}

	for _, ts := range m.tracks {
		if comp := ts.track.Rack.Compressor; comp != nil {
			if link, ok := resolve("track "+ts.track.Name, comp); ok {
				m.trackLinks = append(m.trackLinks, link)
			}
		}
	}
	for _, b := range m.busses {
		for _, comp := range b.chain.compressors() {
			if link, ok := resolve("bus "+b.name, comp); ok {
				m.busLinks[b] = append(m.busLinks[b], link)
			}
		}
	}

	m.orderBusses()
}

// orderBusses sorts busses so every bus runs after the busses its sidechain
// compressors listen to. Cycles are broken by dropping the offending link
// back to self-sidechain.
func (m *Mixer) orderBusses() {
	indegree := map[*Bus]int{}
	dependents := map[*Bus][]*Bus{}
	for _, b := range m.busses {
		indegree[b] = 0
	}
	for b, links := range m.busLinks {
		for _, link := range links {
			if link.srcBus != nil && link.srcBus != b {
				dependents[link.srcBus] = append(dependents[link.srcBus], b)
				indegree[b]++
			}
		}
	}

	var order []*Bus
	queue := make([]*Bus, 0, len(m.busses))
	for _, b := range m.busses {
		if indegree[b] == 0 {
			queue = append(queue, b)
		}
	}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)
		for _, dep := range dependents[b] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < len(m.busses) {
		// The remaining busses form sidechain cycles. Break them: their
		// bus-source links revert to self-sidechain.
		for _, b := range m.busses {
			if indegree[b] > 0 {
				kept := m.busLinks[b][:0]
				for _, link := range m.busLinks[b] {
					if link.srcBus != nil {
						log.Printf("mixer: bus %q: sidechain cycle via bus %q, using self-sidechain", b.name, link.srcBus.name)
						link.comp.SetSidechain("")
						continue
					}
					kept = append(kept, link)
				}
				m.busLinks[b] = kept
				order = append(order, b)
			}
		}
	}
	m.busOrder = order
}

// feedTrackLinks renders the detector blocks for track-chain compressors.
// Track sources tap the pre-chain voice mix; bus sources tap the previous
// block's bus output, one block late, since busses run after track chains.
func (m *Mixer) feedTrackLinks(sampleRate int) {
	for _, link := range m.trackLinks {
		switch {
		case link.srcTrack != nil:
			link.comp.FollowSidechain(link.srcTrack.mono, sampleRate)
		case link.srcBus != nil:
			src := m.downmix(link.srcBus)
			link.comp.FollowSidechain(src, sampleRate)
		}
	}
}

// feedBusLinks renders the detector blocks for one bus's compressors. Track
// sources tap the finished track chain output; bus sources tap the current
// block's output of the already-processed source bus.
func (m *Mixer) feedBusLinks(b *Bus, sampleRate int) {
	for _, link := range m.busLinks[b] {
		switch {
		case link.srcTrack != nil:
			link.comp.FollowSidechain(link.srcTrack.chainBuf, sampleRate)
		case link.srcBus != nil:
			link.comp.FollowSidechain(m.downmix(link.srcBus), sampleRate)
		}
	}
}

// downmix folds a bus's last produced stereo output to mono.
func (m *Mixer) downmix(b *Bus) []float32 {
	if cap(m.downmixBuf) < len(b.outLeft) {
		m.downmixBuf = make([]float32, len(b.outLeft))
	}
	buf := m.downmixBuf[:len(b.outLeft)]
	for i := range buf {
		buf[i] = 0.5 * (b.outLeft[i] + b.outRight[i])
	}
	return buf
}

package mixer

import (
	"log"

	"github.com/chewxy/math32"

	"github.com/sqrew/tunes-sub001/effects"
	"github.com/sqrew/tunes-sub001/music"
	"github.com/sqrew/tunes-sub001/synth"
)

// voice is the common surface of note, drum and sample voices.
type voice interface {
	Render(dst []float32) int
	Active() bool
	EnvLevel() float32
}

type activeVoice struct {
	v           voice
	startSample uint64
}

// trackState is the render-time view of one track: its sorted audible
// events, the bounded voice pool, the mono block buffers and the effect
// chain assembled from the track's rack.
type trackState struct {
	track *music.Track
	pos   *music.Position
	bus   *Bus

	chain   *effects.Chain
	autopan *effects.AutoPan

	events []music.AudioEvent
	next   int

	voices []activeVoice
	limit  int

	// mono holds the voice mix before the effect chain; sidechain taps read
	// it so a compressor never feeds back through its own chain. chainBuf
	// is the post-chain signal pushed to the pan stage.
	mono     []float32
	chainBuf []float32

	seedBase uint32
}

func newTrackState(t *music.Track, seed uint32) *trackState {
	t.SortEvents()
	ts := &trackState{
		track:    t,
		pos:      t.SpatialPosition(),
		chain:    t.Rack.Chain(),
		autopan:  t.Rack.AutoPan,
		limit:    t.VoiceLimit,
		seedBase: seed + uint32(t.ID())*2654435761,
	}
	if ts.limit <= 0 {
		ts.limit = music.DefaultVoiceLimit
	}
	for i := range t.Events {
		if t.Events[i].Audible() {
			ts.events = append(ts.events, t.Events[i])
		}
	}
	return ts
}

func (ts *trackState) ensureBuffers(blockSize int) {
	if cap(ts.mono) < blockSize {
		ts.mono = make([]float32, blockSize)
		ts.chainBuf = make([]float32, blockSize)
	}
	ts.mono = ts.mono[:blockSize]
	ts.chainBuf = ts.chainBuf[:blockSize]
}

// startVoices allocates voices for events whose start falls inside the
// block [s0, s0+n). Malformed events are logged and skipped; the render
// never aborts.
func (ts *trackState) startVoices(s0 uint64, n int, sampleRate int) {
	end := s0 + uint64(n)
	for ts.next < len(ts.events) {
		e := &ts.events[ts.next]
		start := uint64(e.Start * float32(sampleRate))
		if start >= end {
			return
		}
		ts.next++
		if start < s0 {
			start = s0
		}
		v := ts.buildVoice(e, uint32(ts.next), sampleRate)
		if v == nil {
			continue
		}
		ts.addVoice(activeVoice{v: v, startSample: start})
	}
}

func (ts *trackState) buildVoice(e *music.AudioEvent, idx uint32, sampleRate int) voice {
	seed := ts.seedBase + idx*1000003
	switch e.Kind {
	case music.EventNote:
		if !noteOK(e) {
			log.Printf("mixer: track %q: skipping malformed note at t=%g", ts.track.Name, e.Start)
			return nil
		}
		params := synth.NoteParams{
			Freqs:           e.Freqs,
			NumFreqs:        e.NumFreqs,
			Duration:        e.Duration,
			Wave:            e.Wave,
			Table:           e.Table,
			Env:             e.Env,
			FilterEnv:       e.FilterEnv,
			FMRatio:         e.FMRatio,
			FMIndex:         e.FMIndex,
			PitchBend:       e.PitchBend,
			Velocity:        e.Velocity,
			FilterMode:      ts.track.Filter.Mode,
			FilterCutoff:    ts.track.Filter.Cutoff,
			FilterResonance: ts.track.Filter.Resonance,
		}
		return synth.NewVoice(sampleRate, params, seed)
	case music.EventDrum:
		return synth.NewDrumVoice(sampleRate, e.Drum, e.Velocity, seed)
	case music.EventSample:
		if e.PCM == nil || e.Rate <= 0 {
			log.Printf("mixer: track %q: skipping malformed sample event at t=%g", ts.track.Name, e.Start)
			return nil
		}
		return synth.NewSampleVoice(sampleRate, e.PCM, e.Rate, e.Volume)
	}
	return nil
}

// addVoice admits a voice, stealing the lowest-envelope voice when the pool
// is full.
func (ts *trackState) addVoice(av activeVoice) {
	if len(ts.voices) < ts.limit {
		ts.voices = append(ts.voices, av)
		return
	}
	steal := 0
	for i := 1; i < len(ts.voices); i++ {
		if ts.voices[i].v.EnvLevel() < ts.voices[steal].v.EnvLevel() {
			steal = i
		}
	}
	ts.voices[steal] = av
}

// renderVoices mixes the track's voices for block [s0, s0+len(mono)) into
// ts.mono. The chain runs separately so sidechain taps can read the voice
// mix of every track first.
func (ts *trackState) renderVoices(s0 uint64, sampleRate int) {
	for i := range ts.mono {
		ts.mono[i] = 0
	}
	ts.startVoices(s0, len(ts.mono), sampleRate)

	for i := 0; i < len(ts.voices); {
		av := &ts.voices[i]
		off := 0
		if av.startSample > s0 {
			off = int(av.startSample - s0)
		}
		if off < len(ts.mono) {
			av.v.Render(ts.mono[off:])
		}
		if !av.v.Active() {
			ts.voices[i] = ts.voices[len(ts.voices)-1]
			ts.voices = ts.voices[:len(ts.voices)-1]
			continue
		}
		i++
	}
}

// runChain applies the track's effect chain to the voice mix.
func (ts *trackState) runChain(s0 uint64, sampleRate int) {
	copy(ts.chainBuf, ts.mono)
	t0 := float32(s0) / float32(sampleRate)
	ts.chain.ProcessBlock(ts.chainBuf, sampleRate, t0, s0, nil)
}

// activeVoiceCount reports the live voice count, for tests and diagnostics.
func (ts *trackState) activeVoiceCount() int { return len(ts.voices) }

// reset rewinds the event cursor and clears voices and effect state.
func (ts *trackState) reset() {
	ts.next = 0
	ts.voices = ts.voices[:0]
	ts.chain.Reset()
}

func noteOK(e *music.AudioEvent) bool {
	if e.Duration <= 0 || e.NumFreqs <= 0 {
		return false
	}
	for i := 0; i < e.NumFreqs; i++ {
		f := e.Freqs[i]
		if math32.IsNaN(f) || math32.IsInf(f, 0) || f < 0 {
			return false
		}
	}
	return !math32.IsNaN(e.Velocity)
}

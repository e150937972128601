package music

import (
	"log"
	"sort"

	"github.com/sqrew/tunes-sub001/effects"
	"github.com/sqrew/tunes-sub001/synth"
)

// DefaultVoiceLimit bounds the number of simultaneously sounding voices per
// track unless the host configures another limit.
const DefaultVoiceLimit = 32

// FilterParams are the in-line voice filter settings stamped onto every
// note allocated from the track. Cutoff <= 0 leaves voices unfiltered.
type FilterParams struct {
	Mode      synth.SVFModeParam
	Cutoff    float32
	Resonance float32
}

// ModTarget selects which track parameter a modulation route moves.
type ModTarget int

const (
	ModVolume ModTarget = iota
	ModPan
)

// ModRoute is one entry of a track's modulation routing list: a sine LFO
// applied to a track parameter.
type ModRoute struct {
	Target ModTarget
	RateHz float32
	Depth  float32
}

// SynthDefaults are the synthesis settings a track stamps onto new notes
// when the note itself leaves them zero.
type SynthDefaults struct {
	Wave      synth.Waveform
	Table     *synth.Wavetable
	Env       synth.ADSR
	FilterEnv synth.FilterEnvelope
	FMRatio   float32
	FMIndex   float32
}

// Track is an ordered event sequence plus its processing settings. Tracks
// are created through Composition.Track and never deleted.
type Track struct {
	Name    string
	BusName string

	Volume float32
	Pan    float32 // 0 left, 0.5 center, 1 right

	Filter     FilterParams
	Defaults   SynthDefaults
	Rack       effects.Rack
	Mods       []ModRoute
	Program    int // MIDI program number, -1 when unset
	VoiceLimit int

	Events []AudioEvent

	id     int  // 0 until first mutation
	sorted bool // event order cache flag

	comp *Composition
}

func newTrack(comp *Composition, name string) *Track {
	return &Track{
		Name:       name,
		BusName:    DefaultBusName,
		Volume:     1,
		Pan:        0.5,
		Program:    -1,
		VoiceLimit: DefaultVoiceLimit,
		comp:       comp,
	}
}

// ID returns the track's integer ID; 0 means not yet assigned.
func (t *Track) ID() int { return t.id }

// ensureID assigns the track ID on first mutation.
func (t *Track) ensureID() {
	if t.id == 0 && t.comp != nil {
		t.id = t.comp.nextTrackID()
	}
}

// Add appends an event, assigning the track ID if needed and invalidating
// the sorted-order cache.
func (t *Track) Add(e AudioEvent) *Track {
	t.ensureID()
	t.Events = append(t.Events, e)
	t.sorted = false
	return t
}

// Note appends a note event built from the track's synthesis defaults.
func (t *Track) Note(freqs []float32, start, duration float32) *Track {
	e := NewNote(freqs, start, duration)
	t.applyDefaults(&e)
	return t.Add(e)
}

// Drum appends a drum hit.
func (t *Track) Drum(kind synth.DrumKind, start float32) *Track {
	return t.Add(NewDrum(kind, start))
}

// Sample appends a sample trigger for a buffer previously loaded into the
// composition. Unknown names are logged and skipped.
func (t *Track) Sample(name string, start, rate, volume float32) *Track {
	pcm := t.comp.SamplePCM(name)
	if pcm == nil {
		log.Printf("music: track %q references unknown sample %q", t.Name, name)
		return t
	}
	return t.Add(NewSample(pcm, start, rate, volume))
}

// Bus routes the track to the named bus, creating the bus name on first
// reference.
func (t *Track) Bus(name string) *Track {
	t.ensureID()
	t.BusName = name
	if t.comp != nil {
		t.comp.BusID(name)
	}
	return t
}

func (t *Track) applyDefaults(e *AudioEvent) {
	d := t.Defaults
	e.Wave = d.Wave
	if d.Table != nil {
		e.Table = d.Table
	}
	if d.Env != (synth.ADSR{}) {
		e.Env = d.Env
	}
	e.FilterEnv = d.FilterEnv
	e.FMRatio = d.FMRatio
	e.FMIndex = d.FMIndex
}

// SortEvents orders events by start time. The sort is cached until the next
// mutation; stable order keeps equal-start events in insertion order.
func (t *Track) SortEvents() {
	if t.sorted {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].Start < t.Events[j].Start
	})
	t.sorted = true
}

// End returns the time the last event stops sounding.
func (t *Track) End() float32 {
	var end float32
	for i := range t.Events {
		if e := t.Events[i].End(); e > end {
			end = e
		}
	}
	return end
}

// SpatialPosition returns the single position shared by the track's events,
// or nil. Tracks mixing different positions are rejected: spatialization is
// applied per track, so two positions on one track cannot both be honored.
func (t *Track) SpatialPosition() *Position {
	var pos *Position
	for i := range t.Events {
		p := t.Events[i].Pos
		if p == nil {
			continue
		}
		if pos == nil {
			pos = p
			continue
		}
		if *pos != *p {
			panic(&InvalidCompositionError{
				Reason: "track " + t.Name + " carries conflicting spatial positions; move differently positioned events onto separate tracks",
			})
		}
	}
	return pos
}

// Template captures the track's settings as a by-value snapshot. Events and
// effect state are not part of a template.
func (t *Track) Template() TrackTemplate {
	return TrackTemplate{
		Volume:     t.Volume,
		Pan:        t.Pan,
		BusName:    t.BusName,
		Filter:     t.Filter,
		Defaults:   t.Defaults,
		Mods:       append([]ModRoute(nil), t.Mods...),
		Program:    t.Program,
		VoiceLimit: t.VoiceLimit,
	}
}

// TrackTemplate is a frozen snapshot of a track's settings used to stamp
// multiple tracks with identical processing.
type TrackTemplate struct {
	Volume     float32
	Pan        float32
	BusName    string
	Filter     FilterParams
	Defaults   SynthDefaults
	Mods       []ModRoute
	Program    int
	VoiceLimit int
}

// Apply stamps the template onto a track.
func (tpl TrackTemplate) Apply(t *Track) {
	t.Volume = tpl.Volume
	t.Pan = tpl.Pan
	t.BusName = tpl.BusName
	t.Filter = tpl.Filter
	t.Defaults = tpl.Defaults
	t.Mods = append([]ModRoute(nil), tpl.Mods...)
	t.Program = tpl.Program
	t.VoiceLimit = tpl.VoiceLimit
	if t.comp != nil && tpl.BusName != "" {
		t.comp.BusID(tpl.BusName)
	}
}

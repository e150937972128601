package music

import (
	"fmt"

	"github.com/sqrew/tunes-sub001/synth"
)

// EventKind tags the variant carried by an AudioEvent.
type EventKind int

const (
	EventNote EventKind = iota
	EventDrum
	EventSample
	EventTempoChange
	EventTimeSignature
	EventKeySignature
)

// Position is a 3-D spatial position. Events carrying one are spatialized by
// azimuth and distance instead of the track's static pan.
type Position struct {
	X, Y, Z float32
}

// AudioEvent is a tagged variant: a note, a drum hit, a sample trigger, or a
// musical-time meta event. Meta events do not produce PCM but survive event
// transformations.
type AudioEvent struct {
	Kind  EventKind
	Start float32 // seconds, >= 0

	// Note fields. Freqs is inline so chords never heap-allocate per note.
	Freqs     [synth.MaxChordSize]float32
	NumFreqs  int
	Duration  float32 // seconds, > 0 for notes
	Wave      synth.Waveform
	Table     *synth.Wavetable
	Env       synth.ADSR
	FilterEnv synth.FilterEnvelope
	FMRatio   float32
	FMIndex   float32
	PitchBend float32 // semitones
	Velocity  float32

	// Drum fields.
	Drum synth.DrumKind

	// Sample fields. PCM buffers are shared by reference across events.
	PCM    *synth.PCM
	Rate   float32
	Volume float32

	// Meta payloads.
	BPM          float32
	TimeSigNum   int
	TimeSigDenom int
	Key          string

	Pos *Position
}

// NewNote builds a note event. At most MaxChordSize frequencies are kept;
// excess frequencies are dropped silently. Start and duration are validated
// here because notes built through this constructor are the only supported
// path; a non-positive duration is a programmer error.
func NewNote(freqs []float32, start, duration float32) AudioEvent {
	if start < 0 {
		panic(fmt.Sprintf("music: note start %g is negative", start))
	}
	if duration <= 0 {
		panic(fmt.Sprintf("music: note duration %g must be positive", duration))
	}
	e := AudioEvent{
		Kind:     EventNote,
		Start:    start,
		Duration: duration,
		Velocity: 1,
		Env:      synth.ADSR{Attack: 0.005, Decay: 0.05, Sustain: 0.7, Release: 0.1},
	}
	n := len(freqs)
	if n > synth.MaxChordSize {
		n = synth.MaxChordSize
	}
	copy(e.Freqs[:], freqs[:n])
	e.NumFreqs = n
	return e
}

// NewDrum builds a drum hit at the given start time.
func NewDrum(kind synth.DrumKind, start float32) AudioEvent {
	if start < 0 {
		panic(fmt.Sprintf("music: drum start %g is negative", start))
	}
	return AudioEvent{Kind: EventDrum, Start: start, Drum: kind, Velocity: 1}
}

// NewSample builds a sample trigger. rate is the playback speed multiplier
// and must be positive.
func NewSample(pcm *synth.PCM, start, rate, volume float32) AudioEvent {
	if start < 0 {
		panic(fmt.Sprintf("music: sample start %g is negative", start))
	}
	if rate <= 0 {
		panic(fmt.Sprintf("music: sample rate multiplier %g must be positive", rate))
	}
	return AudioEvent{Kind: EventSample, Start: start, PCM: pcm, Rate: rate, Volume: volume}
}

// NewTempoChange builds a tempo meta event.
func NewTempoChange(start, bpm float32) AudioEvent {
	return AudioEvent{Kind: EventTempoChange, Start: start, BPM: bpm}
}

// NewTimeSignature builds a time-signature meta event.
func NewTimeSignature(start float32, num, denom int) AudioEvent {
	return AudioEvent{Kind: EventTimeSignature, Start: start, TimeSigNum: num, TimeSigDenom: denom}
}

// NewKeySignature builds a key-signature meta event.
func NewKeySignature(start float32, key string) AudioEvent {
	return AudioEvent{Kind: EventKeySignature, Start: start, Key: key}
}

// End returns the time at which the event stops sounding. Meta events end
// where they start.
func (e *AudioEvent) End() float32 {
	switch e.Kind {
	case EventNote:
		// Release continues past the scheduled duration.
		return e.Start + e.Duration + e.Env.Release
	case EventDrum:
		return e.Start + e.Drum.Duration()
	case EventSample:
		if e.PCM == nil || e.Rate <= 0 {
			return e.Start
		}
		return e.Start + e.PCM.Duration()/e.Rate
	default:
		return e.Start
	}
}

// Audible reports whether the event produces PCM.
func (e *AudioEvent) Audible() bool {
	return e.Kind == EventNote || e.Kind == EventDrum || e.Kind == EventSample
}

package music

import (
	"fmt"
)

// DefaultSampleRate is the render rate samples are normalized to at load
// time.
const DefaultSampleRate = 44100

// DefaultBusName is the pre-registered bus every track starts on.
const DefaultBusName = "default"

// Composition is the top-level aggregate: tracks, sections, markers, loaded
// samples and templates, plus the ID generators and bus name tables the
// mixer resolves against. The host builds a composition single-threaded and
// hands it to the mixer; it is not safe for concurrent mutation.
type Composition struct {
	BPM float32

	tracks     map[string]*Track
	trackOrder []string

	sections map[string]*Section

	markers map[string]float32

	samples map[string]*SharedPCM

	templates map[string]TrackTemplate

	trackIDs int
	busIDs   int
	busNames map[string]int
	busOrder []string

	arrangeCursor float32

	// Seed feeds noise generators so renders are reproducible.
	Seed uint32
}

// NewComposition creates an empty composition at the given tempo. The
// default bus is pre-registered with ID 0.
func NewComposition(bpm float32) *Composition {
	c := &Composition{
		BPM:       bpm,
		tracks:    map[string]*Track{},
		sections:  map[string]*Section{},
		markers:   map[string]float32{},
		samples:   map[string]*SharedPCM{},
		templates: map[string]TrackTemplate{},
		busNames:  map[string]int{},
		Seed:      1,
	}
	c.busNames[DefaultBusName] = 0
	c.busOrder = append(c.busOrder, DefaultBusName)
	c.busIDs = 1
	return c
}

// nextTrackID hands out track IDs starting at 1; 0 means unassigned.
func (c *Composition) nextTrackID() int {
	c.trackIDs++
	return c.trackIDs
}

// BusID resolves a bus name to its ID, registering the name on first
// reference.
func (c *Composition) BusID(name string) int {
	if id, ok := c.busNames[name]; ok {
		return id
	}
	id := c.busIDs
	c.busIDs++
	c.busNames[name] = id
	c.busOrder = append(c.busOrder, name)
	return id
}

// BusNames returns the registered bus names in ID order.
func (c *Composition) BusNames() []string {
	return c.busOrder
}

// Track returns the named track, creating it on first reference. Tracks are
// processed in creation order.
func (c *Composition) Track(name string) *Track {
	if t, ok := c.tracks[name]; ok {
		return t
	}
	t := newTrack(c, name)
	c.tracks[name] = t
	c.trackOrder = append(c.trackOrder, name)
	return t
}

// Instrument returns the named track stamped with a stored template.
func (c *Composition) Instrument(name, template string) (*Track, error) {
	tpl, ok := c.templates[template]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, template)
	}
	t := c.Track(name)
	tpl.Apply(t)
	return t, nil
}

// SaveTemplate stores a track's settings snapshot under a name.
func (c *Composition) SaveTemplate(name string, tpl TrackTemplate) {
	c.templates[name] = tpl
}

// Template returns a stored template.
func (c *Composition) Template(name string) (TrackTemplate, error) {
	tpl, ok := c.templates[name]
	if !ok {
		return TrackTemplate{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tpl, nil
}

// Tracks returns the tracks in creation order.
func (c *Composition) Tracks() []*Track {
	out := make([]*Track, 0, len(c.trackOrder))
	for _, name := range c.trackOrder {
		out = append(out, c.tracks[name])
	}
	return out
}

// TrackByName returns the named track, or nil.
func (c *Composition) TrackByName(name string) *Track {
	return c.tracks[name]
}

// MarkAt records a named timeline marker.
func (c *Composition) MarkAt(name string, t float32) {
	c.markers[name] = t
}

// MarkerTime looks up a named marker.
func (c *Composition) MarkerTime(name string) (float32, error) {
	t, ok := c.markers[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMarkerNotFound, name)
	}
	return t, nil
}

// SecondsPerBeat derives the beat duration from the tempo.
func (c *Composition) SecondsPerBeat() float32 {
	if c.BPM <= 0 {
		return 0.5
	}
	return 60 / c.BPM
}

// Beats converts a beat count to seconds at the composition tempo.
func (c *Composition) Beats(n float32) float32 {
	return n * c.SecondsPerBeat()
}

// End returns the time the last event of any track stops sounding.
func (c *Composition) End() float32 {
	var end float32
	for _, t := range c.Tracks() {
		if e := t.End(); e > end {
			end = e
		}
	}
	return end
}

// Validate runs the pre-render checks that return errors rather than
// panicking: positive tempo and positive sample playback rates. Spatial
// position conflicts panic separately during finalize.
func (c *Composition) Validate() error {
	if c.BPM <= 0 {
		return &InvalidCompositionError{Reason: fmt.Sprintf("tempo %g must be positive", c.BPM)}
	}
	for _, t := range c.Tracks() {
		for i := range t.Events {
			e := &t.Events[i]
			if e.Start < 0 {
				return &InvalidCompositionError{
					Reason: fmt.Sprintf("track %q event %d starts at %g", t.Name, i, e.Start),
				}
			}
			if e.Kind == EventSample && e.Rate <= 0 {
				return &InvalidCompositionError{
					Reason: fmt.Sprintf("track %q sample event %d has rate %g", t.Name, i, e.Rate),
				}
			}
		}
	}
	return nil
}

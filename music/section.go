package music

import "fmt"

// Section is a named bundle of tracks authored relative to time zero. It is
// never rendered directly; Arrange flattens its events into the
// composition's tracks at the current arrangement cursor.
type Section struct {
	Name   string
	tracks map[string]*Track
	order  []string
	comp   *Composition
}

// Section returns the named section, creating it on first reference.
func (c *Composition) Section(name string) *Section {
	if s, ok := c.sections[name]; ok {
		return s
	}
	s := &Section{Name: name, tracks: map[string]*Track{}, comp: c}
	c.sections[name] = s
	return s
}

// Track returns the section's named track, creating it on first reference.
// Section tracks merge into same-named composition tracks when arranged.
func (s *Section) Track(name string) *Track {
	if t, ok := s.tracks[name]; ok {
		return t
	}
	t := newTrack(s.comp, name)
	s.tracks[name] = t
	s.order = append(s.order, name)
	return t
}

// End returns the section's length: the time its last event stops sounding.
func (s *Section) End() float32 {
	var end float32
	for _, name := range s.order {
		if e := s.tracks[name].End(); e > end {
			end = e
		}
	}
	return end
}

// Arrange flattens the named sections into the composition sequentially,
// each starting where the previous one ended. Section tracks merge into the
// composition track of the same name, adopting its settings on first use.
func (c *Composition) Arrange(names ...string) error {
	for _, name := range names {
		s, ok := c.sections[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrSectionNotFound, name)
		}
		offset := c.arrangeCursor
		for _, trackName := range s.order {
			src := s.tracks[trackName]
			fresh := c.tracks[trackName] == nil
			dst := c.Track(trackName)
			if fresh {
				// First-seen destination adopts the section track's settings.
				src.Template().Apply(dst)
				dst.Rack = src.Rack
			}
			for i := range src.Events {
				e := src.Events[i]
				e.Start += offset
				dst.Add(e)
			}
		}
		c.arrangeCursor += s.End()
	}
	return nil
}

// ArrangeAt behaves like Arrange but places the first section at an explicit
// time and leaves the cursor after the last one.
func (c *Composition) ArrangeAt(start float32, names ...string) error {
	c.arrangeCursor = start
	return c.Arrange(names...)
}

// SectionComposition extracts one section into a standalone composition
// starting at time zero, sharing the parent's tempo, samples and templates.
// Used for exporting a section in isolation.
func (c *Composition) SectionComposition(name string) (*Composition, error) {
	s, ok := c.sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	out := NewComposition(c.BPM)
	out.Seed = c.Seed
	for n, sh := range c.samples {
		out.samples[n] = sh
	}
	for n, tpl := range c.templates {
		out.templates[n] = tpl
	}
	for _, trackName := range s.order {
		src := s.tracks[trackName]
		dst := out.Track(trackName)
		src.Template().Apply(dst)
		dst.Rack = src.Rack
		for i := range src.Events {
			dst.Add(src.Events[i])
		}
	}
	return out, nil
}

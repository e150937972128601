package music

import "math"

// Event transformations are eager functions from event slice to event
// slice. They are pure: the input slice is never mutated, and meta events
// pass through with only their start times adjusted where applicable.

// Shift moves every event later by dt seconds (earlier when negative).
// Events that would start before zero are clamped to zero.
func Shift(events []AudioEvent, dt float32) []AudioEvent {
	out := make([]AudioEvent, len(events))
	for i, e := range events {
		e.Start += dt
		if e.Start < 0 {
			e.Start = 0
		}
		out[i] = e
	}
	return out
}

// Transpose shifts every note's frequencies by the given number of
// semitones. Drums, samples and meta events pass through unchanged.
func Transpose(events []AudioEvent, semitones float32) []AudioEvent {
	ratio := float32(math.Pow(2, float64(semitones)/12))
	out := make([]AudioEvent, len(events))
	for i, e := range events {
		if e.Kind == EventNote {
			for f := 0; f < e.NumFreqs; f++ {
				e.Freqs[f] *= ratio
			}
		}
		out[i] = e
	}
	return out
}

// Stretch scales every start time and note duration by factor. Factor must
// be positive; non-positive factors return the events unchanged.
func Stretch(events []AudioEvent, factor float32) []AudioEvent {
	if factor <= 0 {
		return append([]AudioEvent(nil), events...)
	}
	out := make([]AudioEvent, len(events))
	for i, e := range events {
		e.Start *= factor
		if e.Kind == EventNote {
			e.Duration *= factor
		}
		out[i] = e
	}
	return out
}

// Repeat appends count extra copies of the events, each shifted by period
// seconds from the previous copy.
func Repeat(events []AudioEvent, count int, period float32) []AudioEvent {
	out := append([]AudioEvent(nil), events...)
	for rep := 1; rep <= count; rep++ {
		for _, e := range events {
			e.Start += period * float32(rep)
			out = append(out, e)
		}
	}
	return out
}

// WithVelocity scales the velocity of every note and drum event.
func WithVelocity(events []AudioEvent, scale float32) []AudioEvent {
	out := make([]AudioEvent, len(events))
	for i, e := range events {
		if e.Kind == EventNote || e.Kind == EventDrum {
			e.Velocity *= scale
		}
		out[i] = e
	}
	return out
}

package effects

import "sort"

// InterpMode selects how an Automation interpolates between breakpoints.
type InterpMode int

const (
	InterpStep InterpMode = iota
	InterpLinear
	InterpSmoothstep
)

// Breakpoint is one (time, value) pair of an automation curve.
type Breakpoint struct {
	Time  float32 // seconds
	Value float32
}

// Automation is an immutable time-indexed breakpoint list. Effects hold
// curves by reference and re-sample them on the 64-sample automation grid.
type Automation struct {
	points []Breakpoint
	mode   InterpMode
}

// NewAutomation builds a curve from breakpoints, sorting them by time. It
// panics on an empty point list; curves without points have no meaning.
func NewAutomation(mode InterpMode, points ...Breakpoint) *Automation {
	if len(points) == 0 {
		panic("effects: automation curve needs at least one breakpoint")
	}
	sorted := make([]Breakpoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Automation{points: sorted, mode: mode}
}

// ValueAt samples the curve at time t. Before the first point the first
// value is held; after the last point the last value is held.
func (a *Automation) ValueAt(t float32) float32 {
	pts := a.points
	if t <= pts[0].Time {
		return pts[0].Value
	}
	last := len(pts) - 1
	if t >= pts[last].Time {
		return pts[last].Value
	}

	// First point strictly after t, so a sample landing exactly on a
	// breakpoint already sees that breakpoint's value.
	idx := sort.Search(len(pts), func(i int) bool { return pts[i].Time > t })
	p1 := pts[idx-1]
	p2 := pts[idx]

	switch a.mode {
	case InterpLinear:
		u := (t - p1.Time) / (p2.Time - p1.Time)
		return p1.Value + (p2.Value-p1.Value)*u
	case InterpSmoothstep:
		u := (t - p1.Time) / (p2.Time - p1.Time)
		s := u * u * (3 - 2*u)
		return p1.Value + (p2.Value-p1.Value)*s
	default:
		// Step holds the left value; the switch to p2 happens exactly at
		// p2.Time via the t >= pts[last] / idx boundaries above.
		return p1.Value
	}
}

// autoParam pairs a live parameter value with an optional automation curve.
// The hot path reads value directly; refresh is called on the 64-sample grid.
type autoParam struct {
	value float32
	curve *Automation
}

func (p *autoParam) refresh(t float32) {
	if p.curve != nil {
		p.value = p.curve.ValueAt(t)
	}
}

func (p *autoParam) set(v float32) {
	p.value = v
}

package effects

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/sqrew/tunes-sub001/dsp"
)

// EQ3 is a three-band tone control. Two one-pole filters split the signal at
// the low and high corner frequencies; each band gets its own linear gain.
// With all gains at unity the unit passes input through untouched.
type EQ3 struct {
	lowGain  autoParam
	midGain  autoParam
	highGain autoParam

	lowFreq  float32
	highFreq float32

	lp *dsp.OnePole
	hp *dsp.OnePole

	sampleRate int
}

// NewEQ3 builds a three-band EQ with linear band gains and corner
// frequencies in Hz.
func NewEQ3(lowGain, midGain, highGain, lowFreq, highFreq float32) *EQ3 {
	e := &EQ3{
		lowFreq:  clampParam("eq low freq", lowFreq, 20, 2000),
		highFreq: clampParam("eq high freq", highFreq, 500, 18000),
	}
	e.lowGain.set(clampParam("eq low gain", lowGain, 0, 8))
	e.midGain.set(clampParam("eq mid gain", midGain, 0, 8))
	e.highGain.set(clampParam("eq high gain", highGain, 0, 8))
	return e
}

// AutomateLowGain attaches an automation curve to the low band gain.
func (e *EQ3) AutomateLowGain(a *Automation) { e.lowGain.curve = a }

// AutomateMidGain attaches an automation curve to the mid band gain.
func (e *EQ3) AutomateMidGain(a *Automation) { e.midGain.curve = a }

// AutomateHighGain attaches an automation curve to the high band gain.
func (e *EQ3) AutomateHighGain(a *Automation) { e.highGain.curve = a }

func (e *EQ3) Priority() int { return PriorityEQ }

// onePoleCoeff maps a corner frequency to the smoothing coefficient of the
// one-pole band splitters.
func onePoleCoeff(freq float32, sampleRate int) float32 {
	c := 1 - math32.Exp(-2*math32.Pi*freq/float32(sampleRate))
	return dsp.Clamp(c, 0, 1)
}

func (e *EQ3) ensureFilters(sampleRate int) {
	if e.lp != nil && e.sampleRate == sampleRate {
		return
	}
	e.lp = dsp.NewOnePole(onePoleCoeff(e.lowFreq, sampleRate))
	e.hp = dsp.NewOnePole(onePoleCoeff(e.highFreq, sampleRate))
	e.sampleRate = sampleRate
}

func (e *EQ3) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		e.lowGain.refresh(t)
		e.midGain.refresh(t)
		e.highGain.refresh(t)
	}
	lg, mg, hg := e.lowGain.value, e.midGain.value, e.highGain.value
	if math32.Abs(lg-1) < 0.01 && math32.Abs(mg-1) < 0.01 && math32.Abs(hg-1) < 0.01 {
		return x
	}
	e.ensureFilters(sampleRate)

	low := e.lp.Process(x)
	high := x - e.hp.Process(x)
	mid := x - low - high
	return low*lg + mid*mg + high*hg
}

func (e *EQ3) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return e.Process(x, sampleRate, t, n, 0)
	})
}

func (e *EQ3) Reset() {
	if e.lp != nil {
		e.lp.Reset()
		e.hp.Reset()
	}
}

// PeakBand is one bell band of a parametric EQ.
type PeakBand struct {
	Freq   float32 // center frequency, Hz
	GainDB float32
	Q      float32
}

// ParametricEQ cascades peaking biquad sections, one per configured band.
// Sections are redesigned only when a band parameter or the sample rate
// changes.
type ParametricEQ struct {
	bands []PeakBand
	gains []autoParam // per-band gain automation, in dB

	sections   []*biquad.Section
	built      []PeakBand
	sampleRate int
}

// NewParametricEQ builds a parametric EQ from the given bands.
func NewParametricEQ(bands ...PeakBand) *ParametricEQ {
	p := &ParametricEQ{
		bands: append([]PeakBand(nil), bands...),
		gains: make([]autoParam, len(bands)),
	}
	for i, b := range p.bands {
		p.bands[i].Freq = clampParam("parametric eq freq", b.Freq, 20, 20000)
		p.bands[i].Q = clampParam("parametric eq q", b.Q, 0.1, 30)
		p.gains[i].set(b.GainDB)
	}
	return p
}

// AutomateGain attaches an automation curve to band i's gain in dB.
func (p *ParametricEQ) AutomateGain(i int, a *Automation) {
	if i >= 0 && i < len(p.gains) {
		p.gains[i].curve = a
	}
}

func (p *ParametricEQ) Priority() int { return PriorityEQ }

// ensureSections redesigns the biquad cascade when the effective band set
// differs from the one the current sections were built for.
func (p *ParametricEQ) ensureSections(sampleRate int) {
	same := p.sections != nil && p.sampleRate == sampleRate && len(p.built) == len(p.bands)
	if same {
		for i := range p.bands {
			if p.built[i].Freq != p.bands[i].Freq || p.built[i].Q != p.bands[i].Q || p.built[i].GainDB != p.gains[i].value {
				same = false
				break
			}
		}
	}
	if same {
		return
	}
	p.sections = make([]*biquad.Section, len(p.bands))
	p.built = make([]PeakBand, len(p.bands))
	for i, b := range p.bands {
		gain := p.gains[i].value
		coeffs := design.Peak(float64(b.Freq), float64(gain), float64(b.Q), float64(sampleRate))
		p.sections[i] = biquad.NewSection(coeffs)
		p.built[i] = PeakBand{Freq: b.Freq, GainDB: gain, Q: b.Q}
	}
	p.sampleRate = sampleRate
}

func (p *ParametricEQ) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		for i := range p.gains {
			p.gains[i].refresh(t)
		}
	}
	p.ensureSections(sampleRate)
	v := float64(x)
	for _, sec := range p.sections {
		v = sec.ProcessSample(v)
	}
	return float32(v)
}

func (p *ParametricEQ) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return p.Process(x, sampleRate, t, n, 0)
	})
}

func (p *ParametricEQ) Reset() {
	p.sections = nil
	p.built = nil
}

package effects

import (
	"github.com/chewxy/math32"

	"github.com/sqrew/tunes-sub001/dsp"
)

// Gate is a downward expander. Signal below the threshold is attenuated by
// raising its envelope-to-threshold ratio to the expansion exponent; attack
// opens the gate, release closes it.
type Gate struct {
	thresholdDB autoParam
	ratio       autoParam
	attack      autoParam
	release     autoParam

	env  float32
	gain float32

	envCoeffVal  float32
	openCoeff    float32
	closeCoeff   float32
	coeffRate    int
	coeffAttack  float32
	coeffRelease float32
}

// NewGate builds a gate with threshold in dBFS, expansion ratio >= 1 and
// attack/release times in seconds.
func NewGate(thresholdDB, ratio, attack, release float32) *Gate {
	g := &Gate{gain: 1}
	g.thresholdDB.set(clampParam("gate threshold", thresholdDB, -120, 0))
	g.ratio.set(clampParam("gate ratio", ratio, 1, 100))
	g.attack.set(clampParam("gate attack", attack, 0, 5))
	g.release.set(clampParam("gate release", release, 0, 5))
	return g
}

// AutomateThreshold attaches an automation curve to the threshold in dB.
func (g *Gate) AutomateThreshold(a *Automation) { g.thresholdDB.curve = a }

func (g *Gate) Priority() int { return PriorityGate }

func (g *Gate) refresh(t float32) {
	g.thresholdDB.refresh(t)
	g.ratio.refresh(t)
	g.attack.refresh(t)
	g.release.refresh(t)
}

func (g *Gate) ensureCoeffs(sampleRate int) {
	if g.coeffRate == sampleRate && g.coeffAttack == g.attack.value && g.coeffRelease == g.release.value {
		return
	}
	// Detector smoothing tracks quickly; the ballistic smoothing of the
	// gain itself uses the configured attack and release.
	g.envCoeffVal = envCoeff(0.002, sampleRate)
	g.openCoeff = envCoeff(g.attack.value, sampleRate)
	g.closeCoeff = envCoeff(g.release.value, sampleRate)
	g.coeffRate = sampleRate
	g.coeffAttack = g.attack.value
	g.coeffRelease = g.release.value
}

func (g *Gate) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if n&automationMask == 0 {
		g.refresh(t)
	}
	g.ensureCoeffs(sampleRate)

	d := math32.Abs(x)
	g.env = dsp.FlushDenormals(d + g.envCoeffVal*(g.env-d))

	th := math32.Pow(10, g.thresholdDB.value/20)
	target := float32(1)
	if g.env < th {
		if g.env <= 0 {
			target = 0
		} else {
			target = dsp.Clamp(math32.Pow(g.env/th, g.ratio.value-1), 0, 1)
		}
	}
	coeff := g.closeCoeff
	if target > g.gain {
		coeff = g.openCoeff
	}
	g.gain = dsp.FlushDenormals(target + coeff*(g.gain-target))
	return x * g.gain
}

func (g *Gate) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	blockProcess(buf, sampleRate, t0, n0, nil, func(x, t float32, n uint64, _ float32) float32 {
		return g.Process(x, sampleRate, t, n, 0)
	})
}

func (g *Gate) Reset() {
	g.env = 0
	g.gain = 1
}

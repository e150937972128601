package effects

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-dsp/dsp/filter/crossover"

	"github.com/sqrew/tunes-sub001/dsp"
)

// Compressor is a feed-forward compressor with a smoothed peak detector.
// The threshold is a linear amplitude in (0, 1]. An external sidechain
// source can replace the detector input, and a multiband configuration
// splits the signal into crossover bands with an independent compressor
// per band.
type Compressor struct {
	threshold autoParam
	ratio     autoParam
	attack    autoParam
	release   autoParam
	makeup    autoParam

	env          float32
	attackCoeff  float32
	releaseCoeff float32
	coeffRate    int
	coeffAttack  float32
	coeffRelease float32

	sidechainSource string
	sideBlock       []float32
	sideEnv         float32
	followBuf       []float32

	bands       []Band
	crossovers  []*crossover.Crossover
	xoRate      int
	lowScratch  []float64
	highScratch []float64
	rem         []float64
	bandBuf     []float32
	sum         []float32
}

// Band is one frequency band of a multiband compressor. High is the upper
// band edge in Hz; the last band runs to Nyquist and its High is ignored.
type Band struct {
	High float32
	Comp *Compressor
}

// NewCompressor builds a compressor. threshold is linear amplitude in
// (0, 1], ratio >= 1, attack and release are detector time constants in
// seconds, makeup a linear output gain.
func NewCompressor(threshold, ratio, attack, release, makeup float32) *Compressor {
	c := &Compressor{}
	c.threshold.set(clampParam("compressor threshold", threshold, 1e-4, 1))
	c.ratio.set(clampParam("compressor ratio", ratio, 1, 100))
	c.attack.set(clampParam("compressor attack", attack, 0, 5))
	c.release.set(clampParam("compressor release", release, 0, 5))
	c.makeup.set(clampParam("compressor makeup", makeup, 0, 16))
	return c
}

// AutomateThreshold attaches an automation curve to the threshold.
func (c *Compressor) AutomateThreshold(a *Automation) { c.threshold.curve = a }

// AutomateRatio attaches an automation curve to the ratio.
func (c *Compressor) AutomateRatio(a *Automation) { c.ratio.curve = a }

// AutomateMakeup attaches an automation curve to the makeup gain.
func (c *Compressor) AutomateMakeup(a *Automation) { c.makeup.curve = a }

// SetSidechain routes the detector to the named track or bus. The host
// resolves the name and supplies the detector block before each chain run.
func (c *Compressor) SetSidechain(source string) { c.sidechainSource = source }

// SidechainSource returns the configured sidechain source name, or "".
func (c *Compressor) SidechainSource() string { return c.sidechainSource }

// SetSidechainBlock hands the compressor its detector block for the next
// ProcessBlock call. A nil block falls back to the program signal.
func (c *Compressor) SetSidechainBlock(side []float32) { c.sideBlock = side }

// FollowSidechain runs the detector's one-pole envelope follower over an
// external source block, using this compressor's attack and release, and
// keeps the result as the detector input for the next ProcessBlock call.
func (c *Compressor) FollowSidechain(src []float32, sampleRate int) {
	c.ensureCoeffs(sampleRate)
	if cap(c.followBuf) < len(src) {
		c.followBuf = make([]float32, len(src))
	}
	buf := c.followBuf[:len(src)]
	for i, x := range src {
		d := math32.Abs(x)
		coeff := c.releaseCoeff
		if d > c.sideEnv {
			coeff = c.attackCoeff
		}
		c.sideEnv = dsp.FlushDenormals(d + coeff*(c.sideEnv-d))
		buf[i] = c.sideEnv
	}
	c.sideBlock = buf
}

// SetBands switches the compressor to multiband operation. Bands must be
// ordered by ascending edge frequency; the top-level parameters are ignored
// while bands are configured.
func (c *Compressor) SetBands(bands []Band) {
	c.bands = bands
	c.crossovers = nil
}

func (c *Compressor) Priority() int { return PriorityCompressor }

func (c *Compressor) refresh(t float32) {
	c.threshold.refresh(t)
	c.ratio.refresh(t)
	c.attack.refresh(t)
	c.release.refresh(t)
	c.makeup.refresh(t)
}

// ensureCoeffs caches the detector smoothing coefficients, recomputing only
// when the time constants or sample rate change.
func (c *Compressor) ensureCoeffs(sampleRate int) {
	if c.coeffRate == sampleRate && c.coeffAttack == c.attack.value && c.coeffRelease == c.release.value {
		return
	}
	c.attackCoeff = envCoeff(c.attack.value, sampleRate)
	c.releaseCoeff = envCoeff(c.release.value, sampleRate)
	c.coeffRate = sampleRate
	c.coeffAttack = c.attack.value
	c.coeffRelease = c.release.value
}

// detect advances the envelope follower with detector sample d.
func (c *Compressor) detect(d float32) float32 {
	coeff := c.releaseCoeff
	if d > c.env {
		coeff = c.attackCoeff
	}
	c.env = dsp.FlushDenormals(d + coeff*(c.env-d))
	return c.env
}

// gainFor computes the gain reduction for envelope level env.
func (c *Compressor) gainFor(env float32) float32 {
	th := c.threshold.value
	if env <= th || env <= 0 {
		return 1
	}
	g := math32.Pow(env/th, 1/c.ratio.value-1)
	return dsp.Clamp(g, 0, 1)
}

func (c *Compressor) Process(x float32, sampleRate int, t float32, n uint64, side float32) float32 {
	if len(c.bands) > 0 {
		var one [1]float32
		one[0] = x
		var sideBlk []float32
		if c.sidechainSource != "" {
			sideBlk = []float32{side}
		}
		c.ProcessBlock(one[:], sampleRate, t, n, sideBlk)
		return one[0]
	}
	if n&automationMask == 0 {
		c.refresh(t)
	}
	c.ensureCoeffs(sampleRate)

	d := math32.Abs(x)
	if c.sidechainSource != "" {
		d = math32.Abs(side)
	}
	env := c.detect(d)
	return dsp.Clamp(x*c.gainFor(env)*c.makeup.value, -2, 2)
}

func (c *Compressor) ProcessBlock(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	if c.sideBlock != nil {
		side = c.sideBlock
	}
	if len(c.bands) > 0 {
		c.processMultiband(buf, sampleRate, t0, n0, side)
		return
	}
	blockProcess(buf, sampleRate, t0, n0, side, func(x, t float32, n uint64, s float32) float32 {
		return c.Process(x, sampleRate, t, n, s)
	})
}

// ProcessStereo applies stereo-linked compression: one gain derived from the
// louder channel, applied to both.
func (c *Compressor) ProcessStereo(l, r []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	if c.sideBlock != nil {
		side = c.sideBlock
	}
	dt := 1 / float32(sampleRate)
	for i := range l {
		t := t0 + float32(i)*dt
		n := n0 + uint64(i)
		if n&automationMask == 0 {
			c.refresh(t)
		}
		c.ensureCoeffs(sampleRate)

		d := math32.Abs(l[i])
		if ar := math32.Abs(r[i]); ar > d {
			d = ar
		}
		if c.sidechainSource != "" && side != nil {
			d = math32.Abs(side[i])
		}
		g := c.gainFor(c.detect(d)) * c.makeup.value
		l[i] = dsp.Clamp(l[i]*g, -2, 2)
		r[i] = dsp.Clamp(r[i]*g, -2, 2)
	}
}

// ensureBands builds the crossover cascade and scratch buffers for the
// current band layout, block size and sample rate.
func (c *Compressor) ensureBands(blockLen, sampleRate int) {
	if c.crossovers == nil || c.xoRate != sampleRate {
		c.crossovers = make([]*crossover.Crossover, 0, len(c.bands)-1)
		for _, b := range c.bands[:len(c.bands)-1] {
			xo, err := crossover.New(float64(b.High), 4, float64(sampleRate))
			if err != nil {
				xo = nil
			}
			c.crossovers = append(c.crossovers, xo)
		}
		c.xoRate = sampleRate
	}
	if cap(c.rem) < blockLen {
		c.rem = make([]float64, blockLen)
		c.lowScratch = make([]float64, blockLen)
		c.highScratch = make([]float64, blockLen)
		c.bandBuf = make([]float32, blockLen)
		c.sum = make([]float32, blockLen)
	}
}

// processMultiband splits the block into bands with fourth-order crossovers,
// compresses each band independently and sums the results.
func (c *Compressor) processMultiband(buf []float32, sampleRate int, t0 float32, n0 uint64, side []float32) {
	c.ensureBands(len(buf), sampleRate)
	rem := c.rem[:len(buf)]
	low := c.lowScratch[:len(buf)]
	high := c.highScratch[:len(buf)]
	band := c.bandBuf[:len(buf)]
	sum := c.sum[:len(buf)]

	for i, x := range buf {
		rem[i] = float64(x)
		sum[i] = 0
	}
	for bi, b := range c.bands {
		switch {
		case bi == len(c.bands)-1:
			// Top band takes whatever remains up to Nyquist.
			for i := range band {
				band[i] = float32(rem[i])
			}
		case c.crossovers[bi] != nil:
			c.crossovers[bi].ProcessBlock(rem, low, high)
			for i := range band {
				band[i] = float32(low[i])
			}
			copy(rem, high)
		default:
			// Crossover construction failed; the band stays silent rather
			// than double-counting the remainder.
			for i := range band {
				band[i] = 0
			}
		}
		if b.Comp != nil {
			b.Comp.ProcessBlock(band, sampleRate, t0, n0, side)
		}
		for i := range sum {
			sum[i] += band[i]
		}
	}
	copy(buf, sum)
}

func (c *Compressor) Reset() {
	c.env = 0
	c.sideEnv = 0
	c.sideBlock = nil
	c.crossovers = nil
	for _, b := range c.bands {
		if b.Comp != nil {
			b.Comp.Reset()
		}
	}
}

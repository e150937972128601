package synth

// PCM is a decoded mono sample buffer. Buffers are shared by reference
// across events and immutable after decoding.
type PCM struct {
	Data       []float32
	SampleRate int
}

// Duration returns the buffer length in seconds at its native rate.
func (p *PCM) Duration() float32 {
	if p == nil || p.SampleRate <= 0 {
		return 0
	}
	return float32(len(p.Data)) / float32(p.SampleRate)
}

// SampleVoice plays back a PCM buffer at an adjustable rate with linear
// resampling.
type SampleVoice struct {
	sampleRate int
	pcm        *PCM
	step       float32 // source-frames advanced per output frame
	volume     float32

	pos    float32
	active bool
}

// NewSampleVoice creates a playback voice. rate 1 plays at the buffer's
// native pitch regardless of the render rate.
func NewSampleVoice(sampleRate int, pcm *PCM, rate, volume float32) *SampleVoice {
	if pcm == nil || len(pcm.Data) == 0 || rate <= 0 {
		return &SampleVoice{active: false}
	}
	return &SampleVoice{
		sampleRate: sampleRate,
		pcm:        pcm,
		step:       rate * float32(pcm.SampleRate) / float32(sampleRate),
		volume:     volume,
		active:     true,
	}
}

// Active reports whether playback has frames left.
func (v *SampleVoice) Active() bool {
	return v.active
}

// EnvLevel approximates remaining level for voice stealing; samples do not
// carry an envelope, so treat them as full strength until they end.
func (v *SampleVoice) EnvLevel() float32 {
	if !v.active {
		return 0
	}
	return v.volume
}

// Render adds up to len(dst) samples into dst and returns the frame count
// produced before the buffer ran out.
func (v *SampleVoice) Render(dst []float32) int {
	if !v.active {
		return 0
	}
	data := v.pcm.Data
	last := float32(len(data) - 1)
	for i := range dst {
		if v.pos >= last {
			v.active = false
			return i
		}
		idx := int(v.pos)
		frac := v.pos - float32(idx)
		s := data[idx] + frac*(data[idx+1]-data[idx])
		dst[i] += s * v.volume
		v.pos += v.step
	}
	return len(dst)
}

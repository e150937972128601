package mixer

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/sqrew/tunes-sub001/music"
)

// pcmReader streams interleaved float32 PCM as little-endian bytes.
type pcmReader struct {
	samples []float32
	pos     int
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.samples) {
		return 0, io.EOF
	}
	n := 0
	for n+4 <= len(p) && r.pos < len(r.samples) {
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(r.samples[r.pos]))
		n += 4
		r.pos++
	}
	return n, nil
}

// Play renders the composition and plays it on the default audio device,
// blocking until playback finishes.
func (m *Mixer) Play(sampleRate int) error {
	if sampleRate <= 0 {
		sampleRate = music.DefaultSampleRate
	}
	pcm := m.Render(sampleRate, DefaultBlockSize)

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("mixer: opening audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(&pcmReader{samples: pcm})
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}

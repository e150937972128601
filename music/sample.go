package music

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sqrew/tunes-sub001/internal/wavio"
	"github.com/sqrew/tunes-sub001/synth"
)

// SharedPCM is a decoded sample buffer shared by reference across every
// event that triggers it. The PCM data is immutable after loading.
type SharedPCM struct {
	Name string
	Path string
	PCM  *synth.PCM
}

// LoadSample decodes a WAV file into a named PCM buffer, down-mixed to mono
// and resampled to the render rate. Decode failures surface here, at
// composition time, never during rendering.
func (c *Composition) LoadSample(name, path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".wav" {
		return &SampleDecodeError{Path: path, Reason: fmt.Errorf("unsupported sample format %q", ext)}
	}
	data, rate, err := wavio.ReadMono(path)
	if err != nil {
		return &SampleDecodeError{Path: path, Reason: err}
	}
	data, err = wavio.Resample(data, rate, DefaultSampleRate)
	if err != nil {
		return &SampleDecodeError{Path: path, Reason: err}
	}
	c.samples[name] = &SharedPCM{
		Name: name,
		Path: path,
		PCM:  &synth.PCM{Data: data, SampleRate: DefaultSampleRate},
	}
	return nil
}

// AddSample registers an already-decoded PCM buffer under a name.
func (c *Composition) AddSample(name string, pcm *synth.PCM) {
	c.samples[name] = &SharedPCM{Name: name, PCM: pcm}
}

// SamplePCM returns the named sample buffer, or nil.
func (c *Composition) SamplePCM(name string) *synth.PCM {
	if s, ok := c.samples[name]; ok {
		return s.PCM
	}
	return nil
}

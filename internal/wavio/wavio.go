// Package wavio reads and writes WAV files for sample loading and render
// export.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadMono decodes a WAV file into mono float32 PCM, averaging channels,
// and returns the file's native sample rate.
func ReadMono(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	if frames == 0 {
		return nil, 0, fmt.Errorf("empty wav data: %s", path)
	}
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < ch; c++ {
			sum += buf.Data[i*ch+c]
		}
		out[i] = sum / float32(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// Resample converts mono PCM between sample rates. Matching rates return the
// input unchanged.
func Resample(in []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := r.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}

// WriteStereoLR writes separate left/right channels as a 16-bit stereo WAV.
func WriteStereoLR(path string, left, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch")
	}
	data := make([]float32, len(left)*2)
	for i := 0; i < len(left); i++ {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return WriteStereoInterleaved(path, data, sampleRate)
}

// WriteStereoInterleaved writes interleaved stereo PCM as a 16-bit WAV.
func WriteStereoInterleaved(path string, samples []float32, sampleRate int) error {
	return write(path, samples, sampleRate, 2)
}

// WriteMono writes mono PCM as a 16-bit WAV.
func WriteMono(path string, samples []float32, sampleRate int) error {
	return write(path, samples, sampleRate, 1)
}

func write(path string, samples []float32, sampleRate, channels int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

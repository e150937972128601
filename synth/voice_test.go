package synth

import (
	"math"
	"testing"
)

func renderAll(v *Voice, frames, block int) []float32 {
	out := make([]float32, frames)
	for off := 0; off < frames && v.Active(); {
		n := block
		if off+n > frames {
			n = frames - off
		}
		v.Render(out[off : off+n])
		off += n
	}
	return out
}

func TestVoiceSineNote(t *testing.T) {
	const sampleRate = 44100
	p := NoteParams{
		Duration: 0.25,
		Env:      ADSR{Attack: 0, Decay: 0, Sustain: 1, Release: 0.01},
		Velocity: 1,
	}
	p.Freqs[0] = 440
	p.NumFreqs = 1

	v := NewVoice(sampleRate, p, 1)
	out := renderAll(v, sampleRate/2, 256)

	// During sustain the output is the raw sine.
	for n := 100; n < 110; n++ {
		want := math.Sin(2 * math.Pi * 440 * float64(n) / sampleRate)
		if math.Abs(float64(out[n])-want) > 1e-3 {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], want)
		}
	}
	// Voice must go inactive shortly after duration + release.
	if v.Active() {
		t.Fatal("voice still active after release")
	}
	end := int(float64(sampleRate) * (0.25 + 0.02))
	for n := end; n < len(out); n++ {
		if out[n] != 0 {
			t.Fatalf("audio after release at sample %d: %g", n, out[n])
		}
	}
}

func TestVoiceChordAverages(t *testing.T) {
	const sampleRate = 44100
	p := NoteParams{
		Duration: 0.1,
		Env:      ADSR{Sustain: 1, Release: 0.01},
		Velocity: 1,
		NumFreqs: 2,
	}
	p.Freqs[0] = 440
	p.Freqs[1] = 440

	v := NewVoice(sampleRate, p, 1)
	out := make([]float32, 512)
	v.Render(out)

	// Two identical frequencies averaged equal one oscillator.
	for n := 10; n < 20; n++ {
		want := math.Sin(2 * math.Pi * 440 * float64(n) / sampleRate)
		if math.Abs(float64(out[n])-want) > 1e-3 {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], want)
		}
	}
}

func TestVoiceChordCapped(t *testing.T) {
	p := NoteParams{Duration: 0.1, Env: ADSR{Sustain: 1, Release: 0.01}, Velocity: 1, NumFreqs: 20}
	for i := range p.Freqs {
		p.Freqs[i] = 220
	}
	v := NewVoice(44100, p, 1)
	out := make([]float32, 64)
	if got := v.Render(out); got != 64 {
		t.Fatalf("Render: got %d frames", got)
	}
}

func zeroCrossings(buf []float32) int {
	count := 0
	for n := 1; n < len(buf); n++ {
		if (buf[n-1] < 0) != (buf[n] < 0) {
			count++
		}
	}
	return count
}

func TestVoicePitchBend(t *testing.T) {
	const sampleRate = 44100
	base := NoteParams{Duration: 0.5, Env: ADSR{Sustain: 1, Release: 0.01}, Velocity: 1, NumFreqs: 1}
	base.Freqs[0] = 220

	bent := base
	bent.PitchBend = 12

	vb := NewVoice(sampleRate, bent, 1)
	vu := NewVoice(sampleRate, base, 1)
	ob := make([]float32, sampleRate/2)
	ou := make([]float32, sampleRate/2)
	vb.Render(ob)
	vu.Render(ou)

	// A +12 semitone bend doubles the frequency, so the crossing count.
	cb := zeroCrossings(ob)
	cu := zeroCrossings(ou)
	ratio := float64(cb) / float64(cu)
	if ratio < 1.9 || ratio > 2.1 {
		t.Fatalf("octave bend crossing ratio: got %.3f, want ~2", ratio)
	}
}

func TestVoiceVelocityScales(t *testing.T) {
	p := NoteParams{Duration: 0.1, Env: ADSR{Sustain: 1, Release: 0.01}, Velocity: 0.5, NumFreqs: 1}
	p.Freqs[0] = 440
	v := NewVoice(44100, p, 1)
	out := make([]float32, 256)
	v.Render(out)
	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak > 0.51 || peak < 0.45 {
		t.Fatalf("half velocity peak: got %g, want ~0.5", peak)
	}
}

func TestVoiceFMProducesSidebands(t *testing.T) {
	const sampleRate = 44100
	p := NoteParams{
		Duration: 0.2,
		Env:      ADSR{Sustain: 1, Release: 0.01},
		Velocity: 1,
		NumFreqs: 1,
		FMRatio:  2,
		FMIndex:  1,
	}
	p.Freqs[0] = 440
	v := NewVoice(sampleRate, p, 1)
	out := make([]float32, 2048)
	v.Render(out)

	// FM output must differ from the plain carrier.
	plain := p
	plain.FMIndex = 0
	vp := NewVoice(sampleRate, plain, 1)
	ref := make([]float32, 2048)
	vp.Render(ref)

	var diff float64
	for n := range out {
		diff += math.Abs(float64(out[n] - ref[n]))
	}
	if diff < 1 {
		t.Fatalf("FM output nearly identical to carrier: total diff %g", diff)
	}
}

func TestVoiceFilterDampsHighs(t *testing.T) {
	const sampleRate = 44100
	p := NoteParams{
		Duration:     0.2,
		Env:          ADSR{Sustain: 1, Release: 0.01},
		Velocity:     1,
		NumFreqs:     1,
		Wave:         WaveSaw,
		FilterMode:   FilterLowpass,
		FilterCutoff: 400,
	}
	p.Freqs[0] = 3000
	filtered := NewVoice(sampleRate, p, 1)

	p.FilterCutoff = 0
	raw := NewVoice(sampleRate, p, 1)

	fo := make([]float32, 4096)
	ro := make([]float32, 4096)
	filtered.Render(fo)
	raw.Render(ro)

	var fp, rp float64
	for n := 512; n < 4096; n++ {
		fp += float64(fo[n] * fo[n])
		rp += float64(ro[n] * ro[n])
	}
	if fp >= rp*0.25 {
		t.Fatalf("lowpassed saw power %g not well below raw %g", fp, rp)
	}
}

func TestDrumVoiceRendersAndEnds(t *testing.T) {
	const sampleRate = 44100
	kinds := []DrumKind{
		DrumKick, DrumSnare, DrumHiHatClosed, DrumHiHatOpen,
		DrumTomLow, DrumTomMid, DrumTomHigh, DrumClap,
		DrumRimshot, DrumCrash, DrumRide,
	}
	for _, kind := range kinds {
		v := NewDrumVoice(sampleRate, kind, 1, 42)
		frames := int(float64(kind.Duration())*sampleRate) + sampleRate/10
		out := make([]float32, frames)
		for off := 0; off < frames && v.Active(); {
			n := 256
			if off+n > frames {
				n = frames - off
			}
			v.Render(out[off : off+n])
			off += n
		}
		if v.Active() {
			t.Fatalf("%v still active after its duration", kind)
		}
		var energy float64
		for _, s := range out {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				t.Fatalf("%v produced a non-finite sample", kind)
			}
			energy += float64(s * s)
		}
		if energy <= 1e-6 {
			t.Fatalf("%v produced no energy", kind)
		}
	}
}

func TestDrumVoiceDeterministic(t *testing.T) {
	a := NewDrumVoice(44100, DrumSnare, 1, 99)
	b := NewDrumVoice(44100, DrumSnare, 1, 99)
	oa := make([]float32, 1024)
	ob := make([]float32, 1024)
	a.Render(oa)
	b.Render(ob)
	for n := range oa {
		if oa[n] != ob[n] {
			t.Fatalf("same seed diverged at sample %d", n)
		}
	}
}

func TestSampleVoicePlaysBack(t *testing.T) {
	pcm := &PCM{Data: []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}, SampleRate: 44100}
	v := NewSampleVoice(44100, pcm, 1, 1)
	out := make([]float32, 16)
	got := v.Render(out)
	if got != 7 {
		t.Fatalf("Render: got %d frames, want 7", got)
	}
	for n := 0; n < 7; n++ {
		if out[n] != pcm.Data[n] {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], pcm.Data[n])
		}
	}
	if v.Active() {
		t.Fatal("voice active past buffer end")
	}
}

func TestSampleVoiceHalfRate(t *testing.T) {
	pcm := &PCM{Data: []float32{0, 1, 0, -1, 0}, SampleRate: 44100}
	v := NewSampleVoice(44100, pcm, 0.5, 1)
	out := make([]float32, 4)
	v.Render(out)
	want := []float32{0, 0.5, 1, 0.5}
	for n := range want {
		if math.Abs(float64(out[n]-want[n])) > 1e-6 {
			t.Fatalf("sample %d: got %g, want %g", n, out[n], want[n])
		}
	}
}

func TestSampleVoiceVolume(t *testing.T) {
	pcm := &PCM{Data: []float32{1, 1, 1, 1}, SampleRate: 44100}
	v := NewSampleVoice(44100, pcm, 1, 0.25)
	out := make([]float32, 3)
	v.Render(out)
	for n := range out {
		if out[n] != 0.25 {
			t.Fatalf("sample %d: got %g, want 0.25", n, out[n])
		}
	}
}

func TestSampleVoiceNilBuffer(t *testing.T) {
	v := NewSampleVoice(44100, nil, 1, 1)
	if v.Active() {
		t.Fatal("nil buffer voice should start inactive")
	}
	out := make([]float32, 8)
	if got := v.Render(out); got != 0 {
		t.Fatalf("Render on inactive voice: got %d", got)
	}
}

func TestPCMDuration(t *testing.T) {
	p := &PCM{Data: make([]float32, 22050), SampleRate: 44100}
	if got := p.Duration(); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("Duration: got %g, want 0.5", got)
	}
	var nilPCM *PCM
	if nilPCM.Duration() != 0 {
		t.Fatal("nil PCM duration should be 0")
	}
}

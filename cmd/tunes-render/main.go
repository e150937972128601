package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sqrew/tunes-sub001/analysis"
	"github.com/sqrew/tunes-sub001/effects"
	"github.com/sqrew/tunes-sub001/internal/wavio"
	"github.com/sqrew/tunes-sub001/mixer"
	"github.com/sqrew/tunes-sub001/music"
	"github.com/sqrew/tunes-sub001/preset"
	"github.com/sqrew/tunes-sub001/synth"
)

func main() {
	bpm := flag.Float64("bpm", 120, "Tempo in beats per minute")
	bars := flag.Int("bars", 4, "Number of 4/4 bars to arrange")
	seed := flag.Uint("seed", 1, "Noise seed for deterministic renders")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Optional lead preset JSON file path")
	output := flag.String("output", "output.wav", "Output WAV file path")
	midiPath := flag.String("midi", "", "Optional MIDI export path")
	play := flag.Bool("play", false, "Play the render through the default audio device")
	flag.Parse()

	comp := music.NewComposition(float32(*bpm))
	comp.Seed = uint32(*seed)

	if *presetPath != "" {
		tpl, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		comp.SaveTemplate("lead", tpl)
	}

	buildDemo(comp, *bars)

	m, err := mixer.New(comp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	m.Bus("drums").Volume(0.9)
	m.Bus("synths").
		StereoLinked(effects.NewCompressor(0.6, 2, 0.01, 0.2, 1.1)).
		Effect(effects.NewReverb(0.4, 0.5, 0.15), effects.NewReverb(0.4, 0.5, 0.15))
	m.MasterLinked(effects.NewLimiter(0.95, 0.05))

	fmt.Printf("Rendering %d bars at %.0f BPM, %d Hz (%.2f s)...\n",
		*bars, *bpm, *sampleRate, m.Duration())

	pcm := m.Render(*sampleRate, mixer.DefaultBlockSize)
	mono := analysis.Mono(pcm)
	fmt.Printf("Levels: peak %.3f, RMS %.3f (%.1f dBFS)\n",
		analysis.Peak(pcm), analysis.RMS(mono), analysis.DB(float64(analysis.RMS(mono))))

	if err := wavio.WriteStereoInterleaved(*output, pcm, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)

	if *midiPath != "" {
		if err := m.ExportMIDI(*midiPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *midiPath, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *midiPath)
	}

	if *play {
		if err := m.Play(*sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "Playback error: %v\n", err)
			os.Exit(1)
		}
	}
}

// buildDemo arranges a small four-on-the-floor pattern: drums, a
// sidechain-ducked bass, and a delayed lead line.
func buildDemo(comp *music.Composition, bars int) {
	bar := comp.Beats(4)

	comp.Track("drums").Bus("drums")
	bass := comp.Track("bass").Bus("synths")
	lead, err := comp.Instrument("lead", "lead")
	if err != nil {
		lead = comp.Track("lead")
		lead.Defaults.Wave = synth.WaveSawBL
		lead.Defaults.Env = synth.ADSR{Attack: 0.01, Decay: 0.1, Sustain: 0.6, Release: 0.2}
	}
	lead.Bus("synths")
	lead.Pan = 0.35

	bass.Defaults.Wave = synth.WaveSquareBL
	bass.Defaults.Env = synth.ADSR{Attack: 0.005, Decay: 0.08, Sustain: 0.8, Release: 0.1}
	bass.Filter = music.FilterParams{Mode: synth.FilterLowpass, Cutoff: 800, Resonance: 0.4}
	bass.Rack.Compressor = effects.NewCompressor(0.3, 4, 0.005, 0.12, 1.2)
	bass.Rack.Compressor.SetSidechain("drums")

	lead.Rack.Delay = effects.NewDelay(0.25, 0.35, 0.3)

	intro := comp.Section("intro")
	groove := comp.Section("groove")

	d := intro.Track("drums")
	for beat := 0; beat < 4; beat++ {
		d.Drum(synth.DrumKick, comp.Beats(float32(beat)))
	}

	d = groove.Track("drums")
	b := groove.Track("bass")
	l := groove.Track("lead")
	// Section tracks stamp their own synthesis defaults onto notes, so they
	// need the same voicing as the destination tracks.
	b.Defaults = bass.Defaults
	l.Defaults = lead.Defaults
	for beat := 0; beat < 4; beat++ {
		t := comp.Beats(float32(beat))
		d.Drum(synth.DrumKick, t)
		d.Drum(synth.DrumHiHatClosed, t+comp.Beats(0.5))
		if beat%2 == 1 {
			d.Drum(synth.DrumSnare, t)
		}
		b.Note([]float32{55}, t, comp.Beats(0.9))
	}
	scale := []float32{220, 246.94, 261.63, 293.66, 329.63, 349.23, 392, 440}
	for i, f := range scale {
		l.Note([]float32{f}, comp.Beats(float32(i)*0.5), comp.Beats(0.45))
	}
	l.Note([]float32{329.63, 392, 493.88}, comp.Beats(3), comp.Beats(1))

	// Place each section on the bar grid; Arrange would pack them by
	// their sounding length, release tails included.
	if err := comp.ArrangeAt(0, "intro"); err != nil {
		fmt.Fprintf(os.Stderr, "Error arranging: %v\n", err)
		os.Exit(1)
	}
	for i := 1; i < bars; i++ {
		if err := comp.ArrangeAt(float32(i)*bar, "groove"); err != nil {
			fmt.Fprintf(os.Stderr, "Error arranging: %v\n", err)
			os.Exit(1)
		}
	}
	comp.MarkAt("groove-start", bar)
}

// Package preset loads and saves track templates as JSON files, so
// instrument definitions can live outside the host program.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sqrew/tunes-sub001/music"
	"github.com/sqrew/tunes-sub001/synth"
)

// File is the JSON schema for a track template preset. Pointer fields are
// optional overrides on top of the defaults.
type File struct {
	Volume     *float32       `json:"volume"`
	Pan        *float32       `json:"pan"`
	Bus        string         `json:"bus"`
	Program    *int           `json:"program"`
	VoiceLimit *int           `json:"voice_limit"`
	Waveform   string         `json:"waveform"`
	Envelope   *EnvSetting    `json:"envelope"`
	Filter     *FilterSetting `json:"filter"`
	FM         *FMSetting     `json:"fm"`
}

// EnvSetting is the ADSR portion of a preset.
type EnvSetting struct {
	Attack  float32 `json:"attack"`
	Decay   float32 `json:"decay"`
	Sustain float32 `json:"sustain"`
	Release float32 `json:"release"`
}

// FilterSetting is the in-line voice filter portion of a preset.
type FilterSetting struct {
	Mode      string  `json:"mode"`
	Cutoff    float32 `json:"cutoff"`
	Resonance float32 `json:"resonance"`
}

// FMSetting is the FM operator portion of a preset.
type FMSetting struct {
	Ratio float32 `json:"ratio"`
	Index float32 `json:"index"`
}

var waveforms = map[string]synth.Waveform{
	"sine":        synth.WaveSine,
	"square":      synth.WaveSquare,
	"saw":         synth.WaveSaw,
	"triangle":    synth.WaveTriangle,
	"pulse":       synth.WavePulse,
	"noise":       synth.WaveNoise,
	"square-band": synth.WaveSquareBL,
	"saw-band":    synth.WaveSawBL,
}

var filterModes = map[string]synth.SVFModeParam{
	"lowpass":  synth.FilterLowpass,
	"highpass": synth.FilterHighpass,
	"bandpass": synth.FilterBandpass,
	"notch":    synth.FilterNotch,
}

// LoadJSON reads a preset file into a track template.
func LoadJSON(path string) (music.TrackTemplate, error) {
	var tpl music.TrackTemplate
	b, err := os.ReadFile(path)
	if err != nil {
		return tpl, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return tpl, fmt.Errorf("preset: parsing %s: %w", path, err)
	}
	return Apply(&f)
}

// Apply converts a parsed preset file into a track template.
func Apply(f *File) (music.TrackTemplate, error) {
	tpl := music.TrackTemplate{
		Volume:     1,
		Pan:        0.5,
		BusName:    music.DefaultBusName,
		Program:    -1,
		VoiceLimit: music.DefaultVoiceLimit,
	}
	if f == nil {
		return tpl, nil
	}
	if f.Volume != nil {
		if *f.Volume < 0 {
			return tpl, fmt.Errorf("preset: volume must be >= 0")
		}
		tpl.Volume = *f.Volume
	}
	if f.Pan != nil {
		if *f.Pan < 0 || *f.Pan > 1 {
			return tpl, fmt.Errorf("preset: pan must be in [0, 1]")
		}
		tpl.Pan = *f.Pan
	}
	if f.Bus != "" {
		tpl.BusName = strings.TrimSpace(f.Bus)
	}
	if f.Program != nil {
		tpl.Program = *f.Program
	}
	if f.VoiceLimit != nil {
		if *f.VoiceLimit < 1 {
			return tpl, fmt.Errorf("preset: voice_limit must be >= 1")
		}
		tpl.VoiceLimit = *f.VoiceLimit
	}
	if f.Waveform != "" {
		w, ok := waveforms[strings.ToLower(f.Waveform)]
		if !ok {
			return tpl, fmt.Errorf("preset: unknown waveform %q", f.Waveform)
		}
		tpl.Defaults.Wave = w
	}
	if f.Envelope != nil {
		tpl.Defaults.Env = synth.ADSR{
			Attack:  f.Envelope.Attack,
			Decay:   f.Envelope.Decay,
			Sustain: f.Envelope.Sustain,
			Release: f.Envelope.Release,
		}
	}
	if f.Filter != nil {
		mode, ok := filterModes[strings.ToLower(f.Filter.Mode)]
		if !ok {
			return tpl, fmt.Errorf("preset: unknown filter mode %q", f.Filter.Mode)
		}
		tpl.Filter = music.FilterParams{
			Mode:      mode,
			Cutoff:    f.Filter.Cutoff,
			Resonance: f.Filter.Resonance,
		}
	}
	if f.FM != nil {
		tpl.Defaults.FMRatio = f.FM.Ratio
		tpl.Defaults.FMIndex = f.FM.Index
	}
	return tpl, nil
}

// SaveJSON writes a track template as a preset file.
func SaveJSON(path string, tpl music.TrackTemplate) error {
	f := File{
		Volume:     &tpl.Volume,
		Pan:        &tpl.Pan,
		Bus:        tpl.BusName,
		Program:    &tpl.Program,
		VoiceLimit: &tpl.VoiceLimit,
	}
	for name, w := range waveforms {
		if w == tpl.Defaults.Wave {
			f.Waveform = name
			break
		}
	}
	if tpl.Defaults.Env != (synth.ADSR{}) {
		f.Envelope = &EnvSetting{
			Attack:  tpl.Defaults.Env.Attack,
			Decay:   tpl.Defaults.Env.Decay,
			Sustain: tpl.Defaults.Env.Sustain,
			Release: tpl.Defaults.Env.Release,
		}
	}
	if tpl.Filter.Cutoff > 0 {
		for name, mode := range filterModes {
			if mode == tpl.Filter.Mode {
				f.Filter = &FilterSetting{
					Mode:      name,
					Cutoff:    tpl.Filter.Cutoff,
					Resonance: tpl.Filter.Resonance,
				}
				break
			}
		}
	}
	if tpl.Defaults.FMIndex != 0 {
		f.FM = &FMSetting{Ratio: tpl.Defaults.FMRatio, Index: tpl.Defaults.FMIndex}
	}
	b, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

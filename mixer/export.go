package mixer

import (
	"fmt"

	"github.com/sqrew/tunes-sub001/internal/wavio"
	"github.com/sqrew/tunes-sub001/music"
)

// ExportWAV renders the composition and writes it as a 16-bit stereo WAV.
func (m *Mixer) ExportWAV(path string, sampleRate int) error {
	pcm := m.Render(sampleRate, DefaultBlockSize)
	if sampleRate <= 0 {
		sampleRate = music.DefaultSampleRate
	}
	if err := wavio.WriteStereoInterleaved(path, pcm, sampleRate); err != nil {
		return fmt.Errorf("mixer: exporting %s: %w", path, err)
	}
	return nil
}

// ExportSectionWAV renders a single section in isolation and writes it as a
// 16-bit stereo WAV. The section's tracks render with their own racks but
// without the parent mixer's bus effects.
func (m *Mixer) ExportSectionWAV(section, path string, sampleRate int) error {
	sub, err := m.comp.SectionComposition(section)
	if err != nil {
		return err
	}
	sm, err := New(sub)
	if err != nil {
		return err
	}
	return sm.ExportWAV(path, sampleRate)
}

// ExportSectionMIDI writes a single section as a standard MIDI file.
func (m *Mixer) ExportSectionMIDI(section, path string) error {
	sub, err := m.comp.SectionComposition(section)
	if err != nil {
		return err
	}
	sm, err := New(sub)
	if err != nil {
		return err
	}
	return sm.ExportMIDI(path)
}

package mixer

import (
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/sqrew/tunes-sub001/music"
	"github.com/sqrew/tunes-sub001/synth"
)

const midiTicksPerQuarter = 960

// drumKeys maps drum kinds to General MIDI percussion notes on channel 10.
var drumKeys = map[synth.DrumKind]uint8{
	synth.DrumKick:        36,
	synth.DrumSnare:       38,
	synth.DrumHiHatClosed: 42,
	synth.DrumHiHatOpen:   46,
	synth.DrumTomLow:      41,
	synth.DrumTomMid:      45,
	synth.DrumTomHigh:     48,
	synth.DrumClap:        39,
	synth.DrumRimshot:     37,
	synth.DrumCrash:       49,
	synth.DrumRide:        51,
}

// timedMessage is one MIDI message at an absolute tick.
type timedMessage struct {
	tick uint32
	msg  smf.Message
}

// ExportMIDI writes the composition as a standard MIDI file: one SMF track
// per composition track, drums on channel 10. Sample events have no MIDI
// representation and are skipped.
func (m *Mixer) ExportMIDI(path string) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(midiTicksPerQuarter)

	secToTick := func(t float32) uint32 {
		beats := t / m.comp.SecondsPerBeat()
		return uint32(beats*midiTicksPerQuarter + 0.5)
	}

	const drumCh = uint8(9)

	for ti, track := range m.comp.Tracks() {
		var ch uint8
		isDrum := trackIsDrums(track)
		if isDrum {
			ch = drumCh
		} else {
			ch = uint8(ti % 16)
			if ch == drumCh {
				ch = (ch + 1) % 16
			}
		}

		var msgs []timedMessage
		add := func(tick uint32, msg smf.Message) {
			msgs = append(msgs, timedMessage{tick: tick, msg: msg})
		}

		if ti == 0 {
			add(0, smf.MetaTempo(float64(m.comp.BPM)))
		}
		if track.Program >= 0 && !isDrum {
			add(0, smf.Message(midi.ProgramChange(ch, uint8(track.Program))))
		}

		addNote := func(onTick, offTick uint32, key, vel uint8) {
			add(onTick, smf.Message(midi.NoteOn(ch, key, vel)))
			add(offTick, smf.Message(midi.NoteOff(ch, key)))
		}

		for i := range track.Events {
			e := &track.Events[i]
			switch e.Kind {
			case music.EventNote:
				for f := 0; f < e.NumFreqs; f++ {
					key, ok := freqToKey(e.Freqs[f])
					if !ok {
						continue
					}
					addNote(secToTick(e.Start), secToTick(e.Start+e.Duration), key, velByte(e.Velocity))
				}
			case music.EventDrum:
				if key, ok := drumKeys[e.Drum]; ok {
					addNote(secToTick(e.Start), secToTick(e.Start+e.Drum.Duration()), key, velByte(e.Velocity))
				}
			case music.EventTempoChange:
				add(secToTick(e.Start), smf.MetaTempo(float64(e.BPM)))
			case music.EventTimeSignature:
				add(secToTick(e.Start), smf.MetaMeter(uint8(e.TimeSigNum), uint8(e.TimeSigDenom)))
			case music.EventKeySignature:
				add(secToTick(e.Start), smf.MetaText("key: "+e.Key))
			}
		}

		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].tick < msgs[j].tick })

		var tr smf.Track
		tick := uint32(0)
		for _, tm := range msgs {
			tr.Add(tm.tick-tick, tm.msg)
			tick = tm.tick
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("mixer: midi track %q: %w", track.Name, err)
		}
	}

	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("mixer: writing %s: %w", path, err)
	}
	return nil
}

func trackIsDrums(t *music.Track) bool {
	sawDrum := false
	for i := range t.Events {
		switch t.Events[i].Kind {
		case music.EventDrum:
			sawDrum = true
		case music.EventNote, music.EventSample:
			return false
		}
	}
	return sawDrum
}

// freqToKey converts a frequency to the nearest MIDI key number.
func freqToKey(freq float32) (uint8, bool) {
	if freq <= 0 {
		return 0, false
	}
	key := math.Round(69 + 12*math.Log2(float64(freq)/440))
	if key < 0 || key > 127 {
		return 0, false
	}
	return uint8(key), true
}

func velByte(v float32) uint8 {
	if v <= 0 {
		return 1
	}
	if v >= 1 {
		return 127
	}
	return uint8(v*126 + 1)
}

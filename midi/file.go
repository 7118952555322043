package midi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/debug"
	"go-pianoroll/model"
)

// Resolution and tempo written to saved files. Loading honours whatever
// tempo map the file carries.
const (
	Resolution = 960
	BPM        = 120.0
)

const ticksPerSecond = Resolution * BPM / 60

// LoadFile reads a standard MIDI file into a document, one track per SMF
// track that holds notes. Notes get ids in file order.
func LoadFile(path string) (model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	debug.Log("midi", "loaded %s: %d tracks", path, len(doc.Tracks))
	return doc, nil
}

// Read decodes an SMF stream
func Read(r io.Reader) (doc model.Document, err error) {
	// smf can panic on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse: %v", rec)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return model.Document{}, err
	}

	for _, track := range s.Tracks {
		t := readTrack(s, track)
		if len(t.Notes) > 0 {
			doc.Tracks = append(doc.Tracks, t)
		}
	}
	if len(doc.Tracks) == 0 {
		doc.Tracks = []model.Track{{}}
	}
	return model.SanitizeDocument(doc), nil
}

type openNote struct {
	start    float64
	velocity float64
}

func readTrack(s *smf.SMF, track smf.Track) model.Track {
	var t model.Track
	open := make(map[uint8][]openNote)
	var abs int64

	for _, ev := range track {
		abs += int64(ev.Delta)
		at := float64(s.TimeAt(abs)) / 1e6

		var name string
		if ev.Message.GetMetaTrackName(&name) {
			t.Name = name
			continue
		}

		msg := gomidi.Message(ev.Message)
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			open[key] = append(open[key], openNote{start: at, velocity: float64(vel) / 127})
		case msg.GetNoteEnd(&ch, &key):
			pending := open[key]
			if len(pending) == 0 {
				continue
			}
			on := pending[0]
			open[key] = pending[1:]
			t.Notes = append(t.Notes, model.Note{
				Time:     on.start,
				Pitch:    int(key),
				Duration: at - on.start,
				Velocity: on.velocity,
			})
		}
	}

	sort.SliceStable(t.Notes, func(i, j int) bool { return t.Notes[i].Time < t.Notes[j].Time })
	return t
}

type timedMessage struct {
	tick uint32
	off  bool
	msg  gomidi.Message
}

// SaveFile writes doc as a format 1 SMF
func SaveFile(path string, doc model.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	debug.Log("midi", "saved %s: %d tracks", path, len(doc.Tracks))
	return nil
}

// Write encodes doc as a format 1 SMF: a tempo track followed by one track
// per document track, each on its own channel.
func Write(w io.Writer, doc model.Document) error {
	if len(doc.Tracks) > 16 {
		return errors.New("more than 16 tracks")
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(Resolution)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(BPM))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	for i, t := range doc.Tracks {
		if err := sm.Add(writeTrack(uint8(i), t)); err != nil {
			return fmt.Errorf("add track %d: %w", i, err)
		}
	}

	_, err := sm.WriteTo(w)
	return err
}

func toTicks(seconds float64) uint32 {
	return uint32(math.Round(max(0, seconds) * ticksPerSecond))
}

func writeTrack(channel uint8, t model.Track) smf.Track {
	var msgs []timedMessage
	for _, n := range t.Notes {
		n = model.Normalize(n)
		key := uint8(n.Pitch)
		vel := uint8(model.Clamp(math.Round(n.Velocity*127), 1, 127))
		start := toTicks(n.Time)
		end := max(toTicks(n.End()), start+1)
		msgs = append(msgs,
			timedMessage{tick: start, msg: gomidi.NoteOn(channel, key, vel)},
			timedMessage{tick: end, off: true, msg: gomidi.NoteOff(channel, key)},
		)
	}
	// offs first so a note ending where the next one starts is not cut short
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var track smf.Track
	if t.Name != "" {
		track.Add(0, smf.MetaTrackSequenceName(t.Name))
	}
	var last uint32
	for _, m := range msgs {
		track.Add(m.tick-last, m.msg)
		last = m.tick
	}
	track.Close(0)
	return track
}

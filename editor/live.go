package editor

import (
	"go-pianoroll/debug"
	"go-pianoroll/model"
)

// NoteOn starts a live note at the given recording time in seconds
func (e *Editor) NoteOn(pitch int, velocity, at float64) {
	e.now = max(e.now, at)
	e.live = append(e.live, model.LiveNote{
		Pitch:    model.ClampPitch(pitch),
		Velocity: velocity,
		Start:    at,
		Open:     true,
	})
}

// NoteOff closes the oldest open live note on pitch
func (e *Editor) NoteOff(pitch int, at float64) {
	e.now = max(e.now, at)
	for i := range e.live {
		if e.live[i].Open && e.live[i].Pitch == pitch {
			e.live[i].Open = false
			e.live[i].End = at
			return
		}
	}
}

// Advance moves the recording clock so open live notes grow while held
func (e *Editor) Advance(now float64) {
	e.now = max(e.now, now)
}

// Live returns a copy of the live notes
func (e *Editor) Live() []model.LiveNote {
	out := make([]model.LiveNote, len(e.live))
	copy(out, e.live)
	return out
}

// ClearLive drops all live notes and resets the recording clock
func (e *Editor) ClearLive() {
	e.live = nil
	e.now = 0
}

// ImportRecording turns a finished recording into notes appended to the
// active track. Returns false if the recording held no complete note.
func (e *Editor) ImportRecording(events []model.RecordEvent) bool {
	e.ClearLive()
	recorded := model.NotesFromEvents(events)
	if len(recorded) == 0 {
		return false
	}
	notes := append(e.Notes(), recorded...)
	e.commit(notes)
	debug.Log("editor", "imported %d recorded notes", len(recorded))
	return true
}

package model

import "sort"

// RecordEvent is a note-on or note-off from a recording collaborator. At is
// milliseconds since the recording started.
type RecordEvent struct {
	On       bool
	Pitch    int
	Velocity float64 // 0-1
	At       float64 // ms
}

// MinRecordedDuration is the shortest note a recording produces, in seconds
const MinRecordedDuration = 0.1

// NotesFromEvents pairs note-ons with their note-offs. A note-off with no
// matching note-on is ignored; a note-on never released ends at the last event.
// Notes come out ordered by start time, without ids.
func NotesFromEvents(events []RecordEvent) []Note {
	open := make(map[int][]RecordEvent)
	var notes []Note
	last := 0.0

	closeNote := func(on RecordEvent, at float64) {
		d := (at - on.At) / 1000
		if d < MinRecordedDuration {
			d = MinRecordedDuration
		}
		notes = append(notes, Sanitize(Note{
			Time:     on.At / 1000,
			Pitch:    on.Pitch,
			Duration: d,
			Velocity: on.Velocity,
		}))
	}

	for _, ev := range events {
		last = max(last, ev.At)
		if ev.On {
			open[ev.Pitch] = append(open[ev.Pitch], ev)
			continue
		}
		stack := open[ev.Pitch]
		if len(stack) == 0 {
			continue
		}
		closeNote(stack[0], ev.At)
		open[ev.Pitch] = stack[1:]
	}

	pitches := make([]int, 0, len(open))
	for p := range open {
		pitches = append(pitches, p)
	}
	sort.Ints(pitches)
	for _, p := range pitches {
		for _, on := range open[p] {
			closeNote(on, last)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Time < notes[j].Time })
	return notes
}

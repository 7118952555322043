package model

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Pitch and timing limits shared by every package that touches notes
const (
	MinPitch = 0
	MaxPitch = 127

	DefaultVelocity = 0.7
	DefaultDuration = 0.1
	MinDuration     = 0.01
)

// ID identifies a note for its whole lifetime. Never derived from position
// once assigned.
type ID string

// Note is a timed pitch event
type Note struct {
	ID       ID      `json:"id"`
	Time     float64 `json:"time"`     // seconds
	Pitch    int     `json:"midi"`     // 0-127
	Duration float64 `json:"duration"` // seconds
	Velocity float64 `json:"velocity"` // 0-1
}

// End returns the time the note stops sounding
func (n Note) End() float64 {
	return n.Time + n.Duration
}

// Track is an ordered list of notes. Order carries no meaning; spatial order
// comes from Time.
type Track struct {
	Name  string `json:"name"`
	Notes []Note `json:"notes"`
}

// Document is what the editor operates on
type Document struct {
	Tracks []Track `json:"tracks"`
}

// Clone returns a deep copy so callers never share backing arrays with the store
func (d Document) Clone() Document {
	out := Document{Tracks: make([]Track, len(d.Tracks))}
	for i, t := range d.Tracks {
		out.Tracks[i] = Track{Name: t.Name, Notes: CloneNotes(t.Notes)}
	}
	return out
}

// CloneNotes copies a note slice. A nil input yields an empty non-nil slice.
func CloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}

// IDs returns the ids of notes in order
func IDs(notes []Note) []ID {
	ids := make([]ID, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}

// IDSet returns the ids of notes as a set
func IDSet(notes []Note) map[ID]bool {
	set := make(map[ID]bool, len(notes))
	for _, n := range notes {
		set[n.ID] = true
	}
	return set
}

// SameIDs reports whether two note lists carry the same ids, ignoring order.
// Identity for diffing is the id alone.
func SameIDs(a, b []Note) bool {
	if len(a) != len(b) {
		return false
	}
	set := IDSet(a)
	for _, n := range b {
		if !set[n.ID] {
			return false
		}
	}
	return true
}

// Clamp bounds v to [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPitch bounds a pitch to the valid note range
func ClampPitch(p int) int {
	return Clamp(p, MinPitch, MaxPitch)
}

// Normalize enforces the structural invariants on a single note: time >= 0,
// pitch in range, duration > 0 and velocity in [0, 1].
func Normalize(n Note) Note {
	if math.IsNaN(n.Time) || n.Time < 0 {
		n.Time = 0
	}
	n.Pitch = ClampPitch(n.Pitch)
	if math.IsNaN(n.Duration) || n.Duration < MinDuration {
		n.Duration = MinDuration
	}
	if math.IsNaN(n.Velocity) {
		n.Velocity = DefaultVelocity
	}
	n.Velocity = Clamp(n.Velocity, 0, 1)
	return n
}

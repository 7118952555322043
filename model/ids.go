package model

import (
	"fmt"
	"math"
)

// DeriveID returns the positional id for a note that arrived without one
func DeriveID(track, index int) ID {
	return ID(fmt.Sprintf("t%d-n%d", track, index))
}

// AssignIDs gives every note in the document a unique id. Notes that already
// carry an id keep it unless an earlier note claimed it; the rest get
// DeriveID(track, index), suffixed "~k" with the smallest free k on collision.
// The result depends only on the input, so deriving twice yields the same ids.
func AssignIDs(doc Document) Document {
	out := doc.Clone()
	taken := make(map[ID]bool)

	type slot struct{ track, index int }
	var missing []slot

	for ti := range out.Tracks {
		for ni, n := range out.Tracks[ti].Notes {
			if n.ID == "" || taken[n.ID] {
				missing = append(missing, slot{ti, ni})
				continue
			}
			taken[n.ID] = true
		}
	}

	for _, s := range missing {
		id := DeriveID(s.track, s.index)
		for k := 1; taken[id]; k++ {
			id = ID(fmt.Sprintf("%s~%d", DeriveID(s.track, s.index), k))
		}
		taken[id] = true
		out.Tracks[s.track].Notes[s.index].ID = id
	}
	return out
}

// Sanitize substitutes safe defaults for malformed numeric fields coming from
// an external parser or service
func Sanitize(n Note) Note {
	if bad(n.Velocity) || n.Velocity <= 0 {
		n.Velocity = DefaultVelocity
	}
	if bad(n.Duration) || n.Duration <= 0 {
		n.Duration = DefaultDuration
	}
	if bad(n.Time) || n.Time < 0 {
		n.Time = 0
	}
	return Normalize(n)
}

// SanitizeDocument applies Sanitize to every note and assigns missing ids
func SanitizeDocument(doc Document) Document {
	out := doc.Clone()
	for ti := range out.Tracks {
		for ni := range out.Tracks[ti].Notes {
			out.Tracks[ti].Notes[ni] = Sanitize(out.Tracks[ti].Notes[ni])
		}
	}
	return AssignIDs(out)
}

func bad(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

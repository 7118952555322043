package model

// WireNote is the note schema exchanged with external services. No id crosses
// this boundary.
type WireNote struct {
	Midi     int     `json:"midi"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Velocity float64 `json:"velocity"`
}

// ToWire strips ids. A zero velocity goes out as the default.
func ToWire(notes []Note) []WireNote {
	out := make([]WireNote, len(notes))
	for i, n := range notes {
		vel := n.Velocity
		if vel <= 0 {
			vel = DefaultVelocity
		}
		out[i] = WireNote{Midi: n.Pitch, Time: n.Time, Duration: n.Duration, Velocity: vel}
	}
	return out
}

// FromWire converts received notes back into sanitised, id-less notes. Ids are
// assigned by the store on replacement.
func FromWire(wire []WireNote) []Note {
	out := make([]Note, len(wire))
	for i, w := range wire {
		out[i] = Sanitize(Note{Pitch: w.Midi, Time: w.Time, Duration: w.Duration, Velocity: w.Velocity})
	}
	return out
}

// LiveNote is a note still being captured. Open is true until note-off.
type LiveNote struct {
	Pitch    int
	Velocity float64
	Start    float64 // seconds since recording start
	End      float64
	Open     bool
}

// AsNote returns the note a live note would become if released at now
func (l LiveNote) AsNote(now float64) Note {
	end := l.End
	if l.Open {
		end = now
	}
	return Sanitize(Note{Pitch: l.Pitch, Time: l.Start, Duration: end - l.Start, Velocity: l.Velocity})
}

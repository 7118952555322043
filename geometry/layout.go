package geometry

import (
	"go-pianoroll/model"
)

// Scene is everything needed to compute what a timeline shows
type Scene struct {
	View     View
	Notes    []model.Note
	Live     []model.LiveNote
	Now      float64 // recording clock, used to size open live notes
	Selected map[model.ID]bool

	// In-progress drag preview, applied to selected notes
	Dragging  bool
	DragTime  float64
	DragPitch int
	Playhead  *float64
	SelectBox *Rect
}

// NoteBox is a note placed on the canvas
type NoteBox struct {
	Note     model.Note
	Rect     Rect
	Selected bool
}

// LiveBox is an in-progress recorded note placed on the canvas
type LiveBox struct {
	Live model.LiveNote
	Rect Rect
}

// Frame is the computed geometry of one timeline. It is pure data; drawing is
// somebody else's job.
type Frame struct {
	Mapper      Mapper
	Viewport    Viewport
	Notes       []NoteBox
	Live        []LiveBox
	PlayheadX   float64
	HasPlayhead bool
	SelectBox   *Rect
}

// Layout computes the visible geometry of a scene. Notes are kept in store
// order; anything entirely off-canvas horizontally is culled.
func Layout(s Scene) Frame {
	m := NewMapper(s.View, ComputePitchRange(s.Notes, s.Live))
	f := Frame{
		Mapper:    m,
		Viewport:  s.View.Viewport(),
		SelectBox: s.SelectBox,
	}
	canvas := Rect{X0: 0, Y0: 0, X1: s.View.Width, Y1: s.View.Height}

	for _, n := range s.Notes {
		sel := s.Selected[n.ID]
		if sel && s.Dragging {
			n = Displace(n, s.DragTime, s.DragPitch)
		}
		r := m.NoteRect(n)
		if !r.Overlaps(canvas) {
			continue
		}
		f.Notes = append(f.Notes, NoteBox{Note: n, Rect: r, Selected: sel})
	}

	for _, l := range s.Live {
		r := m.NoteRect(l.AsNote(s.Now))
		if !r.Overlaps(canvas) {
			continue
		}
		f.Live = append(f.Live, LiveBox{Live: l, Rect: r})
	}

	if s.Playhead != nil {
		f.PlayheadX = m.TimeToX(*s.Playhead)
		f.HasPlayhead = f.PlayheadX >= 0 && f.PlayheadX <= s.View.Width
	}
	return f
}

// Displace applies a drag delta to one note: time floors at zero and pitch
// is clamped to the valid range
func Displace(n model.Note, dt float64, dp int) model.Note {
	n.Time = max(0, n.Time+dt)
	n.Pitch = model.ClampPitch(n.Pitch + dp)
	return n
}

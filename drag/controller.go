package drag

import (
	"math"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/model"
	"go-pianoroll/selection"
)

// Movement below both thresholds is a click, not an edit
const (
	TimeThreshold  = 0.01 // seconds
	PitchThreshold = 0.5  // semitones
)

// State of the controller
type State int

const (
	Idle State = iota
	NoteDragging
	BoxSelecting
)

func (s State) String() string {
	switch s {
	case NoteDragging:
		return "note-dragging"
	case BoxSelecting:
		return "box-selecting"
	default:
		return "idle"
	}
}

// Point is a pointer position in pixels
type Point struct {
	X, Y float64
}

// Result describes how a gesture ended
type Result struct {
	Gesture    State // NoteDragging or BoxSelecting; Idle if nothing was in progress
	DeltaTime  float64
	DeltaPitch int
	Moved      bool // a note drag crossed the commit threshold
	Anchor     model.ID
	Box        geometry.Rect
	Modifiers  selection.Modifiers
	Mapper     geometry.Mapper // captured when the gesture began
}

// Controller turns a pointer stream into a drag or box result. Deltas are
// always measured from the gesture's start point with the mapper captured at
// start, so dropped or repeated moves never accumulate error.
type Controller struct {
	state  State
	mapper geometry.Mapper
	start  Point
	last   Point
	anchor model.ID
	mods   selection.Modifiers
}

// New returns an idle controller
func New() *Controller {
	return &Controller{}
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Active reports whether a gesture is in progress
func (c *Controller) Active() bool {
	return c.state != Idle
}

// BeginNote starts dragging from a press on the note anchor
func (c *Controller) BeginNote(m geometry.Mapper, p Point, anchor model.ID, mods selection.Modifiers) {
	c.begin(NoteDragging, m, p, mods)
	c.anchor = anchor
}

// BeginBox starts a box selection from a press on empty space
func (c *Controller) BeginBox(m geometry.Mapper, p Point, mods selection.Modifiers) {
	c.begin(BoxSelecting, m, p, mods)
}

func (c *Controller) begin(s State, m geometry.Mapper, p Point, mods selection.Modifiers) {
	c.state = s
	c.mapper = m
	c.start = p
	c.last = p
	c.anchor = ""
	c.mods = mods
	debug.Log("drag", "begin %s at (%.1f, %.1f)", s, p.X, p.Y)
}

// Reset drops any gesture in progress without producing a result
func (c *Controller) Reset() {
	c.state = Idle
	c.anchor = ""
}

// Move records the latest pointer position. Ignored while idle.
func (c *Controller) Move(p Point) {
	if c.state == Idle {
		return
	}
	c.last = p
	debug.LogEvery(30, "drag", "move %s", c.state)
}

// Delta returns the time and pitch offset of the last point from the start
func (c *Controller) Delta() (float64, int) {
	if c.state != NoteDragging {
		return 0, 0
	}
	return c.delta(c.last)
}

func (c *Controller) delta(p Point) (float64, int) {
	dt := (p.X - c.start.X) / c.mapper.View.Scale()
	dp := c.mapper.YToPitch(p.Y) - c.mapper.YToPitch(c.start.Y)
	return dt, dp
}

// Box returns the current selection rectangle, if box-selecting
func (c *Controller) Box() (geometry.Rect, bool) {
	if c.state != BoxSelecting {
		return geometry.Rect{}, false
	}
	return geometry.NormRect(c.start.X, c.start.Y, c.last.X, c.last.Y), true
}

// End resolves the gesture at p and returns to Idle
func (c *Controller) End(p Point) Result {
	if c.state == Idle {
		return Result{Gesture: Idle}
	}
	c.last = p
	return c.EndAtLast()
}

// EndAtLast resolves the gesture using the last known position, for releases
// that happen outside any tracked surface
func (c *Controller) EndAtLast() Result {
	r := Result{Gesture: c.state, Anchor: c.anchor, Modifiers: c.mods, Mapper: c.mapper}
	switch c.state {
	case NoteDragging:
		r.DeltaTime, r.DeltaPitch = c.delta(c.last)
		r.Moved = ExceedsThreshold(r.DeltaTime, r.DeltaPitch)
	case BoxSelecting:
		r.Box = geometry.NormRect(c.start.X, c.start.Y, c.last.X, c.last.Y)
	}
	debug.Log("drag", "end %s dt=%.3f dp=%d moved=%v", c.state, r.DeltaTime, r.DeltaPitch, r.Moved)
	c.state = Idle
	c.anchor = ""
	return r
}

// ExceedsThreshold reports whether a delta counts as a real move
func ExceedsThreshold(dt float64, dp int) bool {
	return math.Abs(dt) > TimeThreshold || math.Abs(float64(dp)) >= PitchThreshold
}

// Commit applies one delta uniformly to every selected note and returns the
// new note list. Unselected notes are untouched; the input is not modified.
func Commit(notes []model.Note, selected map[model.ID]bool, dt float64, dp int) []model.Note {
	out := model.CloneNotes(notes)
	for i, n := range out {
		if selected[n.ID] {
			out[i] = geometry.Displace(n, dt, dp)
		}
	}
	return out
}

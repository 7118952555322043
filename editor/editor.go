package editor

import (
	"context"
	"errors"

	"go-pianoroll/debug"
	"go-pianoroll/drag"
	"go-pianoroll/geometry"
	"go-pianoroll/model"
	"go-pianoroll/selection"
	"go-pianoroll/store"
	"go-pianoroll/transform"
)

// ErrEmptySelection is returned by selection-scoped edits with nothing selected
var ErrEmptySelection = errors.New("no notes selected")

// Editor is one timeline: a document, the track being edited, its own view,
// selection and drag state. Nothing is shared between editors.
type Editor struct {
	store *store.Store
	track int
	view  geometry.View

	editMode bool
	sel      *selection.Set
	drag     *drag.Controller

	// plain press on a note that was already part of a larger selection;
	// collapses the selection to it if the gesture ends as a click
	pendingClick model.ID

	// duration each selected note had when proportional scaling began
	baselines map[model.ID]float64

	live     []model.LiveNote
	now      float64
	playhead *float64
}

// New creates an editor on doc with the given view
func New(doc model.Document, view geometry.View) *Editor {
	view.Zoom = geometry.ClampZoom(view.Zoom)
	return &Editor{
		store:     store.New(doc),
		view:      view,
		sel:       selection.New(),
		drag:      drag.New(),
		baselines: make(map[model.ID]float64),
	}
}

// OnChange registers the callback that receives every committed document
func (e *Editor) OnChange(fn func(model.Document)) {
	e.store.SetOnChange(fn)
}

// Document returns a copy of the current document
func (e *Editor) Document() model.Document {
	return e.store.Document()
}

// Notes returns a copy of the active track's notes
func (e *Editor) Notes() []model.Note {
	return e.store.Track(e.track)
}

// SetDocument replaces the document wholesale, e.g. after a file load or a
// generation. The selection does not survive.
func (e *Editor) SetDocument(doc model.Document) {
	e.store.Load(doc)
	if e.track >= e.store.NumTracks() {
		e.track = 0
	}
	e.drag.Reset()
	e.clearSelection()
}

// ActiveTrack returns the index of the track being edited
func (e *Editor) ActiveTrack() int {
	return e.track
}

// SetActiveTrack switches the edited track and clears the selection
func (e *Editor) SetActiveTrack(i int) {
	if i < 0 || i == e.track {
		return
	}
	e.track = i
	e.drag.Reset()
	e.clearSelection()
}

// EditMode reports whether pointer editing is enabled
func (e *Editor) EditMode() bool {
	return e.editMode
}

// SetEditMode turns editing on or off. Turning it off drops the selection and
// any gesture in progress.
func (e *Editor) SetEditMode(on bool) {
	e.editMode = on
	if !on {
		e.drag.Reset()
		e.clearSelection()
	}
	debug.Log("editor", "edit mode %v", on)
}

// Selected returns the selected ids, sorted
func (e *Editor) Selected() []model.ID {
	return e.sel.IDs()
}

// Select applies the modifier policy to ids without a pointer gesture, as a
// box selection would. Unknown ids are ignored.
func (e *Editor) Select(ids []model.ID, mods selection.Modifiers) {
	known := model.IDSet(e.Notes())
	var hit []model.ID
	for _, id := range ids {
		if known[id] {
			hit = append(hit, id)
		}
	}
	e.sel.Apply(selection.PolicyFor(mods), hit)
	e.pendingClick = ""
	e.clearBaselines()
}

// View returns the current view parameters
func (e *Editor) View() geometry.View {
	return e.view
}

// Viewport returns the visible time window
func (e *Editor) Viewport() geometry.Viewport {
	return e.view.Viewport()
}

// Resize sets the canvas size in pixels
func (e *Editor) Resize(width, height float64) {
	e.view.Width = width
	e.view.Height = height
}

// Scroll moves the view by dx pixels, never before time zero
func (e *Editor) Scroll(dx float64) {
	e.view.ScrollPixels = max(0, e.view.ScrollPixels+dx)
}

// SetZoom sets the zoom percentage, clamped
func (e *Editor) SetZoom(z float64) {
	e.view.Zoom = geometry.ClampZoom(z)
}

// SetPlayhead sets the playback position to draw, or nil for none
func (e *Editor) SetPlayhead(t *float64) {
	e.playhead = t
}

// Mapper returns the coordinate mapper for the current notes
func (e *Editor) Mapper() geometry.Mapper {
	return geometry.NewMapper(e.view, geometry.ComputePitchRange(e.Notes(), e.live))
}

// Frame computes everything a renderer needs for the current state
func (e *Editor) Frame() geometry.Frame {
	s := geometry.Scene{
		View:     e.view,
		Notes:    e.Notes(),
		Live:     e.live,
		Now:      e.now,
		Selected: e.sel.Map(),
		Playhead: e.playhead,
	}
	if e.drag.State() == drag.NoteDragging {
		s.Dragging = true
		s.DragTime, s.DragPitch = e.drag.Delta()
	}
	if box, ok := e.drag.Box(); ok {
		s.SelectBox = &box
	}
	return geometry.Layout(s)
}

func (e *Editor) clearSelection() {
	e.sel.Clear()
	e.pendingClick = ""
	e.clearBaselines()
}

func (e *Editor) clearBaselines() {
	if len(e.baselines) > 0 {
		e.baselines = make(map[model.ID]float64)
	}
}

// commit replaces the active track and keeps the selection a subset of it
func (e *Editor) commit(notes []model.Note) {
	e.store.ReplaceTrack(e.track, notes)
	if e.sel.Prune(e.Notes()) {
		e.clearBaselines()
	}
}

// Delete removes every selected note from the active track. Returns false if
// edit mode is off or nothing is selected.
func (e *Editor) Delete() bool {
	if !e.editMode || e.sel.Len() == 0 {
		return false
	}
	var kept []model.Note
	for _, n := range e.Notes() {
		if !e.sel.Has(n.ID) {
			kept = append(kept, n)
		}
	}
	debug.Log("editor", "delete %d notes", e.sel.Len())
	e.clearSelection()
	e.commit(kept)
	return true
}

// ApplyTransform runs a named transform over the notes in the viewport
func (e *Editor) ApplyTransform(name string, p transform.Params) error {
	op, err := transform.Lookup(name, p)
	if err != nil {
		return err
	}
	out, err := transform.Apply(e.Notes(), e.Viewport(), op)
	if err != nil {
		return err
	}
	e.commit(out)
	debug.Log("editor", "transform %s committed", name)
	return nil
}

// ApplyDelegated hands the viewport notes to an external service. On failure
// the document is left as it was.
func (e *Editor) ApplyDelegated(ctx context.Context, d transform.Delegate, name string, p transform.DelegateParams) error {
	out, err := transform.ApplyDelegated(ctx, e.Notes(), e.Viewport(), d, name, p)
	if err != nil {
		return err
	}
	e.commit(out)
	return nil
}

// ApplyReply splices a delegated reply received asynchronously. sent are the
// notes that were handed to the service; only those are replaced, even if the
// viewport or the document changed while the request was in flight.
func (e *Editor) ApplyReply(sent []model.Note, reply []model.WireNote) {
	e.commit(transform.SpliceReply(e.Notes(), sent, reply))
	debug.Log("editor", "reply spliced: %d sent, %d received", len(sent), len(reply))
}

// AddRhythm appends a simple rhythm starting at the viewport start and returns
// how many notes it added
func (e *Editor) AddRhythm(p transform.RhythmParams) int {
	added := transform.SimpleRhythm(p, e.Viewport().Start)
	e.commit(append(e.Notes(), added...))
	debug.Log("editor", "rhythm: %d notes at %.2fs", len(added), e.Viewport().Start)
	return len(added)
}

// ScalingDurations reports whether a proportional duration scale is under way,
// i.e. baselines are held for the current selection
func (e *Editor) ScalingDurations() bool {
	return len(e.baselines) > 0
}

// ScaleSelectedDurations sets each selected note's duration to factor times
// the duration it had when scaling started. Repeated calls do not compound;
// the baselines reset whenever the selection changes.
func (e *Editor) ScaleSelectedDurations(factor float64) error {
	if e.sel.Len() == 0 {
		return ErrEmptySelection
	}
	notes := e.Notes()
	for i, n := range notes {
		if !e.sel.Has(n.ID) {
			continue
		}
		base, ok := e.baselines[n.ID]
		if !ok {
			base = n.Duration
			e.baselines[n.ID] = base
		}
		notes[i].Duration = max(model.MinDuration, base*factor)
	}
	e.store.ReplaceTrack(e.track, notes)
	return nil
}

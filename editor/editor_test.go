package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/geometry"
	"go-pianoroll/model"
	"go-pianoroll/selection"
	"go-pianoroll/transform"
)

var noMods = selection.Modifiers{}

func testView() geometry.View {
	return geometry.View{PixelsPerSecond: 100, Zoom: 100, Width: 400, Height: 240, Padding: 20}
}

func twoNotes() model.Document {
	return model.Document{Tracks: []model.Track{{Notes: []model.Note{
		{ID: "a", Time: 0, Pitch: 60, Duration: 1, Velocity: 0.8},
		{ID: "b", Time: 2, Pitch: 64, Duration: 1, Velocity: 0.8},
	}}}}
}

// newEditor returns an editor in edit mode and a pointer to every document it emits
func newEditor(t *testing.T, doc model.Document) (*Editor, *[]model.Document) {
	t.Helper()
	e := New(doc, testView())
	e.SetEditMode(true)
	var emitted []model.Document
	e.OnChange(func(d model.Document) { emitted = append(emitted, d) })
	return e, &emitted
}

func noteByID(t *testing.T, notes []model.Note, id model.ID) model.Note {
	t.Helper()
	for _, n := range notes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("note %s not found", id)
	return model.Note{}
}

// point inside a note, a few pixels from its left edge
func inside(t *testing.T, e *Editor, id model.ID) (float64, float64) {
	r := e.Mapper().NoteRect(noteByID(t, e.Notes(), id))
	return r.X0 + 5, (r.Y0 + r.Y1) / 2
}

func TestDragCommitsPastThreshold(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	m := e.Mapper()
	x, y := inside(t, e, "a")

	require.True(t, e.PointerDown(x, y, noMods))
	e.PointerMove(x+10, y)
	e.PointerUp(x+30, m.PitchToY(62))

	require.Len(t, *emitted, 1)
	a := noteByID(t, e.Notes(), "a")
	assert.InDelta(t, 0.3, a.Time, 1e-9)
	assert.Equal(t, 62, a.Pitch)
	assert.Equal(t, 64, noteByID(t, e.Notes(), "b").Pitch)
}

func TestTinyDragDoesNotMutate(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	x, y := inside(t, e, "a")

	e.PointerDown(x, y, noMods)
	e.PointerUp(x+0.1, y)

	assert.Empty(t, *emitted)
	assert.Equal(t, 0.0, noteByID(t, e.Notes(), "a").Time)
	assert.Equal(t, []model.ID{"a"}, e.Selected())
}

func TestPointerIgnoredOutsideEditMode(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	e.SetEditMode(false)
	x, y := inside(t, e, "a")

	assert.False(t, e.PointerDown(x, y, noMods))
	e.PointerUp(x+50, y)
	assert.Empty(t, *emitted)
	assert.Empty(t, e.Selected())
}

func TestClickSemantics(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	ax, ay := inside(t, e, "a")
	bx, by := inside(t, e, "b")

	click := func(x, y float64, mods selection.Modifiers) {
		e.PointerDown(x, y, mods)
		e.PointerUp(x, y)
	}

	click(ax, ay, noMods)
	assert.Equal(t, []model.ID{"a"}, e.Selected())

	click(bx, by, noMods)
	assert.Equal(t, []model.ID{"b"}, e.Selected())

	click(ax, ay, selection.Modifiers{Shift: true})
	assert.Equal(t, []model.ID{"a", "b"}, e.Selected())

	click(bx, by, selection.Modifiers{Ctrl: true})
	assert.Equal(t, []model.ID{"a"}, e.Selected())

	// empty space with a modifier keeps the selection
	click(350, 30, selection.Modifiers{Shift: true})
	assert.Equal(t, []model.ID{"a"}, e.Selected())

	// empty space without one clears it
	click(350, 30, noMods)
	assert.Empty(t, e.Selected())
}

func TestBoxSelectionPolicies(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	box := func(x1, y1, x2, y2 float64, mods selection.Modifiers) {
		e.PointerDown(x1, y1, mods)
		e.PointerMove((x1+x2)/2, (y1+y2)/2)
		e.PointerUp(x2, y2)
	}

	box(-1, 0, 399, 239, noMods)
	assert.Equal(t, []model.ID{"a", "b"}, e.Selected())

	// a's rectangle only: x 0..100, lower half of the canvas
	box(10, 239, 150, 150, selection.Modifiers{Ctrl: true})
	assert.Equal(t, []model.ID{"b"}, e.Selected())

	box(10, 239, 150, 150, selection.Modifiers{Shift: true})
	assert.Equal(t, []model.ID{"a", "b"}, e.Selected())

	box(150, 0, 199, 239, noMods)
	assert.Empty(t, e.Selected())
}

func TestGroupDragAndClickCollapse(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	e.PointerDown(-1, 0, noMods)
	e.PointerUp(399, 239)
	require.Equal(t, []model.ID{"a", "b"}, e.Selected())

	x, y := inside(t, e, "a")
	e.PointerDown(x, y, noMods)
	e.PointerUp(x+50, y)

	require.Len(t, *emitted, 1)
	assert.InDelta(t, 0.5, noteByID(t, e.Notes(), "a").Time, 1e-9)
	assert.InDelta(t, 2.5, noteByID(t, e.Notes(), "b").Time, 1e-9)
	assert.Equal(t, []model.ID{"a", "b"}, e.Selected())

	x, y = inside(t, e, "b")
	e.PointerDown(x, y, noMods)
	e.PointerUp(x, y)
	assert.Equal(t, []model.ID{"b"}, e.Selected())
	assert.Len(t, *emitted, 1)
}

func TestPointerLostUsesLastPosition(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	x, y := inside(t, e, "b")
	e.PointerDown(x, y, noMods)
	e.PointerMove(x-100, y)
	e.PointerLost()

	require.Len(t, *emitted, 1)
	assert.InDelta(t, 1.0, noteByID(t, e.Notes(), "b").Time, 1e-9)
}

func TestDeleteRemovesSelection(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	assert.False(t, e.Delete())

	x, y := inside(t, e, "a")
	e.PointerDown(x, y, noMods)
	e.PointerUp(x, y)
	require.NoError(t, e.ScaleSelectedDurations(2))
	require.Len(t, *emitted, 1)

	assert.True(t, e.Delete())
	require.Len(t, *emitted, 2)
	assert.Equal(t, []model.ID{"b"}, model.IDs(e.Notes()))
	assert.Empty(t, e.Selected())
	assert.Empty(t, e.baselines)
}

func TestEditModeOffClearsSelection(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	x, y := inside(t, e, "a")
	e.PointerDown(x, y, noMods)
	e.PointerUp(x, y)
	require.NotEmpty(t, e.Selected())

	e.SetEditMode(false)
	assert.Empty(t, e.Selected())
	assert.False(t, e.Delete())
}

func TestScaleDurationsFromBaseline(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	assert.ErrorIs(t, e.ScaleSelectedDurations(2), ErrEmptySelection)

	ax, ay := inside(t, e, "a")
	e.PointerDown(ax, ay, noMods)
	e.PointerUp(ax, ay)

	require.NoError(t, e.ScaleSelectedDurations(2))
	require.NoError(t, e.ScaleSelectedDurations(3))
	assert.InDelta(t, 3.0, noteByID(t, e.Notes(), "a").Duration, 1e-9)

	// a new selection starts from the current durations
	bx, by := inside(t, e, "b")
	e.PointerDown(bx, by, noMods)
	e.PointerUp(bx, by)
	ax, ay = inside(t, e, "a")
	e.PointerDown(ax, ay, noMods)
	e.PointerUp(ax, ay)

	require.NoError(t, e.ScaleSelectedDurations(0.5))
	assert.InDelta(t, 1.5, noteByID(t, e.Notes(), "a").Duration, 1e-9)
}

func TestApplyTransformScopedToViewport(t *testing.T) {
	doc := twoNotes()
	doc.Tracks[0].Notes = append(doc.Tracks[0].Notes, model.Note{ID: "far", Time: 10, Pitch: 50, Duration: 1, Velocity: 0.5})
	e, emitted := newEditor(t, doc)

	p := transform.DefaultParams()
	p.Semitones = 3
	require.NoError(t, e.ApplyTransform("transpose", p))

	require.Len(t, *emitted, 1)
	assert.Equal(t, 63, noteByID(t, e.Notes(), "a").Pitch)
	assert.Equal(t, 67, noteByID(t, e.Notes(), "b").Pitch)
	assert.Equal(t, 50, noteByID(t, e.Notes(), "far").Pitch)
}

func TestApplyTransformEmptyViewport(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	e.Scroll(5000)
	err := e.ApplyTransform("reverse", transform.DefaultParams())
	assert.ErrorIs(t, err, transform.ErrEmptyViewport)
	assert.Empty(t, *emitted)
}

func TestMirrorKeepsSelectionSubset(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	e.PointerDown(-1, 0, noMods)
	e.PointerUp(399, 239)

	require.NoError(t, e.ApplyTransform("mirror", transform.DefaultParams()))
	assert.Len(t, e.Notes(), 4)
	assert.Equal(t, []model.ID{"a", "b"}, e.Selected())
}

func TestSetDocumentClearsSelection(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	x, y := inside(t, e, "a")
	e.PointerDown(x, y, noMods)
	e.PointerUp(x, y)

	e.SetDocument(model.Document{Tracks: []model.Track{{Notes: []model.Note{{Pitch: 70, Duration: 1}}}}})
	assert.Empty(t, e.Selected())
	assert.Empty(t, *emitted)
	assert.Equal(t, []model.ID{"t0-n0"}, model.IDs(e.Notes()))
}

func TestLiveNotesAndImport(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	e.NoteOn(90, 0.5, 0.5)
	require.Len(t, e.Live(), 1)
	assert.True(t, e.Live()[0].Open)
	assert.Equal(t, 92, e.Mapper().Range.Max)

	e.NoteOff(90, 1.0)
	assert.False(t, e.Live()[0].Open)

	ok := e.ImportRecording([]model.RecordEvent{
		{On: true, Pitch: 90, Velocity: 0.5, At: 500},
		{On: false, Pitch: 90, At: 1000},
	})
	assert.True(t, ok)
	assert.Empty(t, e.Live())
	require.Len(t, *emitted, 1)
	assert.Len(t, e.Notes(), 3)
	assert.False(t, e.ImportRecording(nil))
}

func TestFrameShowsDragPreviewAndBox(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	x, y := inside(t, e, "a")
	e.PointerDown(x, y, noMods)
	e.PointerMove(x+100, y)

	f := e.Frame()
	require.NotEmpty(t, f.Notes)
	assert.InDelta(t, 1.0, f.Notes[0].Note.Time, 1e-9)
	e.PointerUp(x+100, y)

	e.PointerDown(350, 20, noMods)
	e.PointerMove(300, 60)
	f = e.Frame()
	require.NotNil(t, f.SelectBox)
	assert.Equal(t, geometry.Rect{X0: 300, Y0: 20, X1: 350, Y1: 60}, *f.SelectBox)
}

func TestWorkspaceRoutesKeysToFocus(t *testing.T) {
	w := NewWorkspace()
	e1, _ := newEditor(t, twoNotes())
	e2, _ := newEditor(t, twoNotes())
	l1 := w.AddLayer("one", e1)
	l2 := w.AddLayer("two", e2)
	assert.NotEqual(t, l1.ID, l2.ID)
	assert.Equal(t, l1, w.Focused())

	for _, e := range []*Editor{e1, e2} {
		x, y := inside(t, e, "a")
		e.PointerDown(x, y, noMods)
		e.PointerUp(x, y)
	}

	require.True(t, w.Focus(l2.ID))
	assert.True(t, w.HandleKey("delete"))
	assert.Len(t, e1.Notes(), 2)
	assert.Len(t, e2.Notes(), 1)

	assert.Equal(t, l1, w.FocusNext())
	assert.False(t, w.Focus("missing"))
	assert.False(t, w.HandleKey("?"))
}

func TestSelectByID(t *testing.T) {
	e, _ := newEditor(t, twoNotes())
	e.Select([]model.ID{"a", "missing"}, noMods)
	assert.Equal(t, []model.ID{"a"}, e.Selected())

	e.Select([]model.ID{"b"}, selection.Modifiers{Shift: true})
	assert.Equal(t, []model.ID{"a", "b"}, e.Selected())

	e.Select([]model.ID{"a"}, selection.Modifiers{Ctrl: true})
	assert.Equal(t, []model.ID{"b"}, e.Selected())
}

func TestAddRhythmAtViewportStart(t *testing.T) {
	e, emitted := newEditor(t, twoNotes())
	e.Scroll(300)

	assert.Equal(t, 6, e.AddRhythm(transform.DefaultRhythm))
	notes := e.Notes()
	require.Len(t, notes, 8)
	assert.Len(t, *emitted, 1)

	ids := model.IDSet(notes)
	assert.Len(t, ids, 8)
	for _, n := range notes[2:] {
		assert.NotEmpty(t, n.ID)
		assert.GreaterOrEqual(t, n.Time, 3.0)
	}
	assert.InDelta(t, 3.0, notes[2].Time, 1e-9)
}

package editor

import (
	"go-pianoroll/debug"
	"go-pianoroll/drag"
	"go-pianoroll/selection"
)

// PointerDown handles a press at (x, y). Returns false when edit mode is off
// and the event was ignored.
func (e *Editor) PointerDown(x, y float64, mods selection.Modifiers) bool {
	if !e.editMode {
		return false
	}
	m := e.Mapper()
	p := drag.Point{X: x, Y: y}
	e.pendingClick = ""

	n, ok := selection.HitTest(m, e.Notes(), x, y)
	if !ok {
		if !mods.Any() {
			e.clearSelection()
		}
		e.drag.BeginBox(m, p, mods)
		return true
	}

	if mods.Any() {
		e.sel.Toggle(n.ID)
		e.clearBaselines()
		if !e.sel.Has(n.ID) {
			// toggled out; nothing left under the pointer to drag
			return true
		}
	} else if e.sel.Has(n.ID) && e.sel.Len() > 1 {
		e.pendingClick = n.ID
	} else if !e.sel.Has(n.ID) || e.sel.Len() != 1 {
		e.sel.Replace(n.ID)
		e.clearBaselines()
	}
	e.drag.BeginNote(m, p, n.ID, mods)
	return true
}

// PointerMove updates the gesture in progress
func (e *Editor) PointerMove(x, y float64) {
	e.drag.Move(drag.Point{X: x, Y: y})
}

// PointerUp finishes the gesture at (x, y)
func (e *Editor) PointerUp(x, y float64) {
	e.resolve(e.drag.End(drag.Point{X: x, Y: y}))
}

// PointerLost finishes the gesture at the last known position, for releases
// outside the timeline
func (e *Editor) PointerLost() {
	if e.drag.Active() {
		e.resolve(e.drag.EndAtLast())
	}
}

func (e *Editor) resolve(r drag.Result) {
	switch r.Gesture {
	case drag.NoteDragging:
		if r.Moved {
			e.pendingClick = ""
			e.commit(drag.Commit(e.Notes(), e.sel.Map(), r.DeltaTime, r.DeltaPitch))
			debug.Log("editor", "moved %d notes by %.3fs %+d", e.sel.Len(), r.DeltaTime, r.DeltaPitch)
			return
		}
		if e.pendingClick != "" {
			e.sel.Replace(e.pendingClick)
			e.pendingClick = ""
			e.clearBaselines()
		}

	case drag.BoxSelecting:
		ids := selection.HitTestBox(r.Mapper, e.Notes(), r.Box.X0, r.Box.Y0, r.Box.X1, r.Box.Y1)
		policy := selection.PolicyFor(r.Modifiers)
		e.sel.Apply(policy, ids)
		e.clearBaselines()
		debug.Log("editor", "box %s: %d hit, %d selected", policy, len(ids), e.sel.Len())
	}
}

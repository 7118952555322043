package selection

import (
	"go-pianoroll/geometry"
	"go-pianoroll/model"
)

// HitTest returns the first note, in store order, whose rectangle contains the
// point. Overlapping notes resolve to whichever comes first in the slice, not
// whichever is drawn on top.
func HitTest(m geometry.Mapper, notes []model.Note, x, y float64) (model.Note, bool) {
	for _, n := range notes {
		if m.NoteRect(n).Contains(x, y) {
			return n, true
		}
	}
	return model.Note{}, false
}

// HitTestBox returns the ids of every note whose rectangle overlaps the box
// spanned by the two corners, in store order
func HitTestBox(m geometry.Mapper, notes []model.Note, x1, y1, x2, y2 float64) []model.ID {
	box := geometry.NormRect(x1, y1, x2, y2)
	var ids []model.ID
	for _, n := range notes {
		if m.NoteRect(n).Overlaps(box) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

package selection

import (
	"sort"

	"go-pianoroll/model"
)

// Modifiers are the keys held during a pointer gesture
type Modifiers struct {
	Shift bool
	Ctrl  bool // ctrl or meta/cmd
	Alt   bool
}

// Any reports whether a selection-altering modifier is held
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl
}

// Policy decides how a box-selection result combines with the existing set
type Policy int

const (
	PolicyReplace Policy = iota
	PolicyUnion
	PolicyToggle
)

func (p Policy) String() string {
	switch p {
	case PolicyUnion:
		return "union"
	case PolicyToggle:
		return "toggle"
	default:
		return "replace"
	}
}

// PolicyFor maps held modifiers to a box policy: ctrl toggles, shift adds,
// nothing replaces
func PolicyFor(m Modifiers) Policy {
	switch {
	case m.Ctrl:
		return PolicyToggle
	case m.Shift:
		return PolicyUnion
	default:
		return PolicyReplace
	}
}

// Set is a set of selected note ids
type Set struct {
	ids map[model.ID]bool
}

// New creates an empty selection
func New() *Set {
	return &Set{ids: make(map[model.ID]bool)}
}

// Has reports whether id is selected
func (s *Set) Has(id model.ID) bool {
	return s.ids[id]
}

// Len returns the number of selected ids
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted
func (s *Set) IDs() []model.ID {
	out := make([]model.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Map returns a copy of the set as a map, for geometry layout
func (s *Set) Map() map[model.ID]bool {
	out := make(map[model.ID]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out
}

// Clear empties the selection. Returns true if anything was removed.
func (s *Set) Clear() bool {
	had := len(s.ids) > 0
	s.ids = make(map[model.ID]bool)
	return had
}

// Replace makes ids the whole selection
func (s *Set) Replace(ids ...model.ID) {
	s.ids = make(map[model.ID]bool, len(ids))
	for _, id := range ids {
		s.ids[id] = true
	}
}

// Union adds ids to the selection
func (s *Set) Union(ids ...model.ID) {
	for _, id := range ids {
		s.ids[id] = true
	}
}

// Toggle flips each id in or out of the selection
func (s *Set) Toggle(ids ...model.ID) {
	for _, id := range ids {
		if s.ids[id] {
			delete(s.ids, id)
		} else {
			s.ids[id] = true
		}
	}
}

// Apply combines a box result with the selection under policy p
func (s *Set) Apply(p Policy, ids []model.ID) {
	switch p {
	case PolicyUnion:
		s.Union(ids...)
	case PolicyToggle:
		s.Toggle(ids...)
	default:
		s.Replace(ids...)
	}
}

// Prune drops ids not present in notes, keeping the selection a subset of
// the document. Returns true if anything was dropped.
func (s *Set) Prune(notes []model.Note) bool {
	valid := model.IDSet(notes)
	dropped := false
	for id := range s.ids {
		if !valid[id] {
			delete(s.ids, id)
			dropped = true
		}
	}
	return dropped
}

package store

import (
	"go-pianoroll/debug"
	"go-pianoroll/model"
)

// Store holds the current Document. All mutation is whole-document replacement;
// callers only ever see copies.
type Store struct {
	doc      model.Document
	onChange func(model.Document)
}

// New creates a store seeded with doc. Missing ids are assigned.
func New(doc model.Document) *Store {
	return &Store{doc: model.SanitizeDocument(doc)}
}

// SetOnChange registers the owner callback invoked once per replacement
func (s *Store) SetOnChange(fn func(model.Document)) {
	s.onChange = fn
}

// Document returns a copy of the current snapshot
func (s *Store) Document() model.Document {
	return s.doc.Clone()
}

// NumTracks returns how many tracks the document has
func (s *Store) NumTracks() int {
	return len(s.doc.Tracks)
}

// Track returns a copy of the notes of track i, or nil if out of range
func (s *Store) Track(i int) []model.Note {
	if i < 0 || i >= len(s.doc.Tracks) {
		return nil
	}
	return model.CloneNotes(s.doc.Tracks[i].Notes)
}

// Load swaps in a document supplied by the owner without emitting it back
func (s *Store) Load(doc model.Document) {
	s.doc = model.SanitizeDocument(doc)
	debug.Log("store", "load: %d tracks, %d notes", len(s.doc.Tracks), s.count())
}

// Replace swaps in a new document and emits it
func (s *Store) Replace(doc model.Document) {
	s.doc = model.SanitizeDocument(doc)
	debug.Log("store", "replace: %d tracks, %d notes", len(s.doc.Tracks), s.count())
	if s.onChange != nil {
		s.onChange(s.doc.Clone())
	}
}

// ReplaceTrack replaces the document with one whose track i holds notes.
// Tracks are appended as needed so i always exists afterwards.
func (s *Store) ReplaceTrack(i int, notes []model.Note) {
	if i < 0 {
		return
	}
	next := s.doc.Clone()
	for len(next.Tracks) <= i {
		next.Tracks = append(next.Tracks, model.Track{})
	}
	next.Tracks[i].Notes = model.CloneNotes(notes)
	s.Replace(next)
}

func (s *Store) count() int {
	n := 0
	for _, t := range s.doc.Tracks {
		n += len(t.Notes)
	}
	return n
}

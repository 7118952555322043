package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/model"
)

func TestNewAssignsIDs(t *testing.T) {
	s := New(model.Document{Tracks: []model.Track{{Notes: []model.Note{{Pitch: 60, Duration: 1, Velocity: 1}}}}})
	assert.Equal(t, model.ID("t0-n0"), s.Track(0)[0].ID)
}

func TestDocumentIsACopy(t *testing.T) {
	s := New(model.Document{Tracks: []model.Track{{Notes: []model.Note{{ID: "a", Pitch: 60, Duration: 1, Velocity: 1}}}}})
	doc := s.Document()
	doc.Tracks[0].Notes[0].Pitch = 10

	notes := s.Track(0)
	notes[0].Pitch = 20

	assert.Equal(t, 60, s.Track(0)[0].Pitch)
}

func TestReplaceEmitsOnce(t *testing.T) {
	s := New(model.Document{})
	var emitted []model.Document
	s.SetOnChange(func(d model.Document) { emitted = append(emitted, d) })

	s.ReplaceTrack(1, []model.Note{{Pitch: 64, Duration: 0.5, Velocity: 0.5}})

	require.Len(t, emitted, 1)
	assert.Len(t, emitted[0].Tracks, 2)
	assert.Equal(t, model.ID("t1-n0"), emitted[0].Tracks[1].Notes[0].ID)
	assert.Equal(t, 2, s.NumTracks())
}

func TestLoadDoesNotEmit(t *testing.T) {
	s := New(model.Document{})
	called := false
	s.SetOnChange(func(model.Document) { called = true })
	s.Load(model.Document{Tracks: []model.Track{{}}})
	assert.False(t, called)
	assert.Equal(t, 1, s.NumTracks())
}

func TestTrackOutOfRange(t *testing.T) {
	s := New(model.Document{})
	assert.Nil(t, s.Track(3))
}

package transform

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/geometry"
	"go-pianoroll/model"
)

var window = geometry.Viewport{Start: 0, Duration: 4}

func randomNotes(r *rand.Rand, n int) []model.Note {
	notes := make([]model.Note, n)
	for i := range notes {
		notes[i] = model.Note{
			ID:       model.ID(fmt.Sprintf("n%d", i)),
			Time:     r.Float64() * 4,
			Pitch:    r.Intn(128),
			Duration: 0.05 + r.Float64(),
			Velocity: r.Float64(),
		}
	}
	return notes
}

func TestEvenlySpaceScenario(t *testing.T) {
	notes := []model.Note{
		{ID: "a", Time: 0, Pitch: 60, Duration: 1, Velocity: 0.8},
		{ID: "b", Time: 2, Pitch: 64, Duration: 1, Velocity: 0.8},
	}
	out := EvenlySpace(notes, window)
	require.Len(t, out, 2)
	assert.Equal(t, 0.0, out[0].Time)
	assert.Equal(t, 4.0, out[1].Time)
}

func TestEvenlySpaceSingleNoteIsNoop(t *testing.T) {
	notes := []model.Note{{ID: "a", Time: 1.3, Pitch: 60, Duration: 1}}
	assert.Equal(t, notes, EvenlySpace(notes, window))
}

func TestQuantizeScenario(t *testing.T) {
	out := Quantize([]model.Note{{ID: "a", Time: 1.13, Pitch: 60, Duration: 0.4}}, 0.25)
	// 1.13/0.25 = 4.52, rounds to 5
	assert.InDelta(t, 1.25, out[0].Time, 1e-12)
}

func TestQuantizeIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, g := range []float64{0.0625, 0.1, 0.25, 1.0 / 3, 1} {
		once := Quantize(randomNotes(r, 50), g)
		assert.Equal(t, once, Quantize(once, g), "grid %v", g)
	}
}

func TestTransposeInverseWhenUnclamped(t *testing.T) {
	notes := []model.Note{{ID: "a", Pitch: 10}, {ID: "b", Pitch: 100}, {ID: "c", Pitch: 120}}
	assert.Equal(t, notes, Transpose(Transpose(notes, 7), -7))
	assert.Equal(t, notes, Transpose(Transpose(notes, -10), 10))

	// clamped at the top, so the law does not hold
	assert.NotEqual(t, notes, Transpose(Transpose(notes, 8), -8))
}

func TestReverseTwiceRestores(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	notes := randomNotes(r, 40)
	for _, vp := range []geometry.Viewport{window, {Start: 3.7, Duration: 1.9}, {Start: 0.01, Duration: 123}} {
		back := Reverse(Reverse(notes, vp), vp)
		for i := range notes {
			assert.InDelta(t, notes[i].Time, back[i].Time, 1e-9)
		}
	}
}

func TestReverseKeepsPitch(t *testing.T) {
	out := Reverse([]model.Note{{ID: "a", Time: 1, Pitch: 61}}, window)
	assert.Equal(t, 3.0, out[0].Time)
	assert.Equal(t, 61, out[0].Pitch)
}

func TestMirrorDoublesWithFreshIDs(t *testing.T) {
	notes := []model.Note{
		{ID: "a", Time: 0, Pitch: 60, Duration: 1},
		{ID: "b", Time: 1, Pitch: 62, Duration: 0.5},
		{ID: "c", Time: 2, Pitch: 64, Duration: 1},
	}
	out := Mirror(notes)
	require.Len(t, out, 6)

	orig := model.IDSet(notes)
	for _, n := range out[3:] {
		assert.False(t, orig[n.ID], "id %s reused", n.ID)
	}
	assert.Len(t, model.IDSet(out), 6)

	// pattern spans [0, 3); the copy starts at 3 with the last note first
	assert.Equal(t, model.ID("c-mirror-2"), out[3].ID)
	assert.InDelta(t, 3.0, out[3].Time, 1e-9)
	assert.Equal(t, model.ID("b-mirror-1"), out[4].ID)
	assert.InDelta(t, 4.5, out[4].Time, 1e-9)
	assert.Equal(t, model.ID("a-mirror-0"), out[5].ID)
	assert.InDelta(t, 5.0, out[5].Time, 1e-9)
}

func TestInvert(t *testing.T) {
	out := Invert([]model.Note{{Pitch: 60}, {Pitch: 64}, {Pitch: 67}})
	assert.Equal(t, []int{67, 63, 60}, []int{out[0].Pitch, out[1].Pitch, out[2].Pitch})
}

func TestScaleAroundMidpoint(t *testing.T) {
	out := Scale([]model.Note{{Time: 1}, {Time: 3}}, 0.5, window)
	assert.Equal(t, 1.5, out[0].Time)
	assert.Equal(t, 2.5, out[1].Time)
}

func TestAlignToStart(t *testing.T) {
	out := AlignToStart([]model.Note{{Time: 2.5}, {Time: 1.5}}, 1)
	assert.Equal(t, 2.0, out[0].Time)
	assert.Equal(t, 1.0, out[1].Time)
}

func TestHumanizeSeededAndBounded(t *testing.T) {
	notes := randomNotes(rand.New(rand.NewSource(3)), 30)
	a := Humanize(notes, Seeded(DefaultHumanize, 42))
	b := Humanize(notes, Seeded(DefaultHumanize, 42))
	assert.Equal(t, a, b)

	for i, n := range a {
		assert.InDelta(t, notes[i].Time, n.Time, 0.05+1e-12)
		assert.GreaterOrEqual(t, n.Velocity, 0.1)
		assert.LessOrEqual(t, n.Velocity, 1.0)
	}
}

func TestCompressToScale(t *testing.T) {
	out := CompressToScale([]model.Note{{Pitch: 61}, {Pitch: 66}, {Pitch: 71}}, 0, Scales["major"])
	assert.Equal(t, []int{60, 65, 71}, []int{out[0].Pitch, out[1].Pitch, out[2].Pitch})
}

func TestKeyRoot(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"", 0},
		{"C", 0},
		{"f#", 6},
		{"Bb", 10},
		{" a ", 9},
	}
	for _, tt := range tests {
		got, err := KeyRoot(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}
	_, err := KeyRoot("H")
	assert.Error(t, err)
}

func TestApplyKeepsInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	p := DefaultParams()
	p.Factor = -3
	p.Semitones = 40
	p.Shift = -10
	p.Duration = -1
	p.Humanize = Seeded(DefaultHumanize, 7)

	for _, name := range Names() {
		op, err := Lookup(name, p)
		require.NoError(t, err)
		out, err := Apply(randomNotes(r, 25), window, op)
		require.NoError(t, err, name)
		for _, n := range out {
			assert.GreaterOrEqual(t, n.Time, 0.0, name)
			assert.GreaterOrEqual(t, n.Pitch, 0, name)
			assert.LessOrEqual(t, n.Pitch, 127, name)
			assert.Greater(t, n.Duration, 0.0, name)
		}
	}
}

func TestApplyEmptyViewport(t *testing.T) {
	notes := []model.Note{{ID: "a", Time: 10, Pitch: 60, Duration: 1}}
	op, _ := Lookup("reverse", DefaultParams())
	out, err := Apply(notes, window, op)
	assert.ErrorIs(t, err, ErrEmptyViewport)
	assert.Equal(t, notes, out)
}

func TestApplyOnlyTouchesViewport(t *testing.T) {
	notes := []model.Note{
		{ID: "out", Time: 9, Pitch: 50, Duration: 1},
		{ID: "a", Time: 1, Pitch: 60, Duration: 1},
		{ID: "b", Time: 3, Pitch: 62, Duration: 1},
	}
	op, _ := Lookup("reverse", DefaultParams())
	out, err := Apply(notes, window, op)
	require.NoError(t, err)
	assert.Equal(t, notes[0], out[0])
	assert.Equal(t, model.ID("a"), out[1].ID)
	assert.Equal(t, 3.0, out[1].Time)
	assert.Equal(t, 1.0, out[2].Time)
}

func TestSpliceAppendsNewAndDropsMissing(t *testing.T) {
	all := []model.Note{{ID: "x"}, {ID: "a"}, {ID: "b"}, {ID: "y"}}
	viewport := all[1:3]
	result := []model.Note{{ID: "new", Pitch: 1}, {ID: "b", Pitch: 2}, {Pitch: 3}}

	out := Splice(all, viewport, result)
	assert.Equal(t, []model.ID{"x", "b", "y", "new", ""}, model.IDs(out))
	assert.Equal(t, 2, out[1].Pitch)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("nope", DefaultParams())
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

type fakeDelegate struct {
	got []model.WireNote
	out []model.WireNote
	err error
}

func (f *fakeDelegate) Transform(_ context.Context, _ string, notes []model.WireNote, _ DelegateParams) ([]model.WireNote, error) {
	f.got = notes
	return f.out, f.err
}

func TestApplyDelegatedReplacesViewportNotes(t *testing.T) {
	notes := []model.Note{
		{ID: "a", Time: 1, Pitch: 60, Duration: 1, Velocity: 0.5},
		{ID: "late", Time: 8, Pitch: 40, Duration: 1, Velocity: 0.5},
	}
	d := &fakeDelegate{out: []model.WireNote{
		{Midi: 60, Time: 1, Duration: 1, Velocity: 0.5},
		{Midi: 55, Time: 1.5, Duration: 1, Velocity: 0.5},
	}}

	out, err := ApplyDelegated(context.Background(), notes, window, d, "counterpoint", DelegateParams{})
	require.NoError(t, err)
	require.Len(t, d.got, 1)
	assert.Equal(t, 60, d.got[0].Midi)

	require.Len(t, out, 3)
	assert.Equal(t, model.ID("late"), out[0].ID)
	assert.Equal(t, model.ID(""), out[1].ID)
	assert.Equal(t, 55, out[2].Pitch)
}

func TestApplyDelegatedFailureLeavesNotes(t *testing.T) {
	notes := []model.Note{{ID: "a", Time: 1, Pitch: 60, Duration: 1}}
	boom := errors.New("backend down")
	out, err := ApplyDelegated(context.Background(), notes, window, &fakeDelegate{err: boom}, "counterpoint", DelegateParams{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, notes, out)
}

func TestSimpleRhythmDefaults(t *testing.T) {
	out := SimpleRhythm(DefaultRhythm, 2)
	require.Len(t, out, 6)
	for i, n := range out {
		assert.InDelta(t, 2+0.75*float64(i), n.Time, 1e-9)
		assert.Equal(t, 60, n.Pitch)
		assert.Equal(t, 0.5, n.Duration)
		assert.Equal(t, model.DefaultVelocity, n.Velocity)
		assert.Empty(t, n.ID)
	}
}

func TestSimpleRhythmClampsParams(t *testing.T) {
	tests := []struct {
		name  string
		p     RhythmParams
		count int
		dur   float64
	}{
		{"no rest", RhythmParams{Pitch: 60, NoteDuration: 0.5, Interval: 0, Total: 4}, 8, 0.5},
		{"rest capped at double", RhythmParams{Pitch: 60, NoteDuration: 1, Interval: 500, Total: 4}, 2, 1},
		{"duration floored", RhythmParams{Pitch: 60, NoteDuration: 0, Interval: 0, Total: 1}, 10, 0.1},
		{"total capped", RhythmParams{Pitch: 60, NoteDuration: 2, Interval: 0, Total: 60}, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SimpleRhythm(tt.p, 0)
			require.Len(t, out, tt.count)
			assert.Equal(t, tt.dur, out[0].Duration)
		})
	}
	assert.Equal(t, 127, SimpleRhythm(RhythmParams{Pitch: 300, NoteDuration: 0.5, Total: 1}, 0)[0].Pitch)
}

func TestDuplicateShiftsByViewportDuration(t *testing.T) {
	vp := geometry.Viewport{Start: 10, Duration: 4}
	notes := []model.Note{{ID: "a", Time: 11, Pitch: 60, Duration: 1, Velocity: 0.8}}

	out := Duplicate(notes, vp)
	require.Len(t, out, 2)
	assert.Equal(t, notes[0], out[0])
	assert.Equal(t, model.ID("a-dup"), out[1].ID)
	assert.Equal(t, 15.0, out[1].Time)
}

func TestSpliceReplyKeepsUnsentNotes(t *testing.T) {
	all := []model.Note{
		{ID: "a", Time: 0, Pitch: 60, Duration: 1, Velocity: 0.8},
		{ID: "b", Time: 2, Pitch: 64, Duration: 1, Velocity: 0.8},
		{ID: "c", Time: 10, Pitch: 70, Duration: 1, Velocity: 0.8},
	}
	reply := model.ToWire(all[:2])

	out := SpliceReply(all, all[:2], reply)
	require.Len(t, out, 3)
	assert.Equal(t, all[2], out[0])
	var pitches []int
	for _, n := range out {
		pitches = append(pitches, n.Pitch)
	}
	assert.ElementsMatch(t, []int{60, 64, 70}, pitches)
}

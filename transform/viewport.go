package transform

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/model"
)

var (
	// ErrEmptyViewport is returned when no notes fall inside the viewport.
	// Nothing is replaced; callers may tell the user.
	ErrEmptyViewport = errors.New("no notes in current viewport")

	// ErrUnknownTransform is returned by Lookup for an unregistered name
	ErrUnknownTransform = errors.New("unknown transform")
)

// Op is a transform bound to its parameters
type Op func(notes []model.Note, vp geometry.Viewport) []model.Note

// Params carries the user-chosen parameters of every transform
type Params struct {
	Grid      float64 // quantize, seconds
	Factor    float64 // scale
	Shift     float64 // seconds
	Semitones int     // transpose
	Duration  float64 // uniform-duration, seconds
	Root      int     // compress-to-scale, pitch class 0-11
	ScaleType string  // compress-to-scale, key into Scales
	Humanize  HumanizeParams
}

// DefaultParams mirrors the stock panel defaults
func DefaultParams() Params {
	return Params{
		Grid:      0.25,
		Factor:    1.0,
		Shift:     0.5,
		Duration:  0.25,
		ScaleType: "major",
		Humanize:  DefaultHumanize,
	}
}

type entry struct {
	name  string
	build func(p Params) Op
}

var registry = []entry{
	{"evenly-space", func(Params) Op { return EvenlySpace }},
	{"quantize", func(p Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return Quantize(n, p.Grid) }
	}},
	{"scale", func(p Params) Op {
		return func(n []model.Note, vp geometry.Viewport) []model.Note { return Scale(n, p.Factor, vp) }
	}},
	{"shift", func(p Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return Shift(n, p.Shift) }
	}},
	{"reverse", func(Params) Op { return Reverse }},
	{"align-start", func(Params) Op {
		return func(n []model.Note, vp geometry.Viewport) []model.Note { return AlignToStart(n, vp.Start) }
	}},
	{"transpose", func(p Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return Transpose(n, p.Semitones) }
	}},
	{"invert", func(Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return Invert(n) }
	}},
	{"uniform-duration", func(p Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return UniformDuration(n, p.Duration) }
	}},
	{"humanize", func(p Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return Humanize(n, p.Humanize) }
	}},
	{"mirror", func(Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note { return Mirror(n) }
	}},
	{"duplicate", func(Params) Op { return Duplicate }},
	{"compress-to-scale", func(p Params) Op {
		return func(n []model.Note, _ geometry.Viewport) []model.Note {
			return CompressToScale(n, p.Root, Scales[p.ScaleType])
		}
	}},
}

// Names lists the registered transforms in menu order
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	return names
}

// Lookup binds the named transform to p
func Lookup(name string, p Params) (Op, error) {
	for _, e := range registry {
		if e.name == name {
			return e.build(p), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
}

// InViewport returns the notes whose start lies in [vp.Start, vp.End], in order
func InViewport(notes []model.Note, vp geometry.Viewport) []model.Note {
	var out []model.Note
	for _, n := range notes {
		if vp.Contains(n.Time) {
			out = append(out, n)
		}
	}
	return out
}

// Splice puts a transform result back into the full note list. Each original
// viewport note is replaced in place by the result note with the same id, or
// dropped if the result has none. Result notes with ids the viewport did not
// have (or no id) are appended in result order.
func Splice(all, viewport, result []model.Note) []model.Note {
	inView := model.IDSet(viewport)
	byID := make(map[model.ID]model.Note, len(result))
	for _, n := range result {
		if n.ID != "" && inView[n.ID] {
			byID[n.ID] = n
		}
	}

	out := make([]model.Note, 0, len(all)+len(result))
	for _, n := range all {
		if !inView[n.ID] {
			out = append(out, n)
			continue
		}
		if r, ok := byID[n.ID]; ok {
			out = append(out, r)
			delete(byID, n.ID)
		}
	}
	for _, n := range result {
		if n.ID == "" || !inView[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// Apply runs op over the notes inside vp and splices the result back. Every
// output note is clamped to the structural invariants. With nothing in the
// viewport it returns ErrEmptyViewport and an unchanged copy.
func Apply(notes []model.Note, vp geometry.Viewport, op Op) ([]model.Note, error) {
	in := InViewport(notes, vp)
	if len(in) == 0 {
		debug.Log("transform", "empty viewport [%.2f, %.2f]", vp.Start, vp.End())
		return model.CloneNotes(notes), ErrEmptyViewport
	}

	result := op(model.CloneNotes(in), vp)
	for i := range result {
		result[i] = model.Normalize(result[i])
	}
	out := Splice(notes, in, result)
	debug.Log("transform", "applied to %d of %d notes, %d after", len(in), len(notes), len(out))
	return out, nil
}

// SortByTime returns a copy ordered by start time, stable on ties
func SortByTime(notes []model.Note) []model.Note {
	out := model.CloneNotes(notes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Seeded returns humanize params that draw from a fixed seed
func Seeded(p HumanizeParams, seed int64) HumanizeParams {
	p.Rand = rand.New(rand.NewSource(seed))
	return p
}

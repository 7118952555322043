// Package transform holds the viewport-scoped note transformations. Every
// function here is pure: it takes a note slice and returns a new one without
// touching its input.
package transform

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go-pianoroll/geometry"
	"go-pianoroll/model"
)

// EvenlySpace sorts notes by time and spreads them from the viewport start to
// its end. One note or fewer is left alone.
func EvenlySpace(notes []model.Note, vp geometry.Viewport) []model.Note {
	out := model.CloneNotes(notes)
	if len(out) <= 1 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	spacing := vp.Duration / float64(len(out)-1)
	for i := range out {
		out[i].Time = vp.Start + float64(i)*spacing
	}
	return out
}

// Quantize snaps start times to the nearest multiple of grid. A non-positive
// grid is a no-op.
func Quantize(notes []model.Note, grid float64) []model.Note {
	out := model.CloneNotes(notes)
	if grid <= 0 {
		return out
	}
	for i := range out {
		out[i].Time = math.Round(out[i].Time/grid) * grid
	}
	return out
}

// Scale stretches start times around the viewport midpoint
func Scale(notes []model.Note, factor float64, vp geometry.Viewport) []model.Note {
	mid := vp.Start + vp.Duration/2
	out := model.CloneNotes(notes)
	for i := range out {
		out[i].Time = mid + (out[i].Time-mid)*factor
	}
	return out
}

// Shift moves every note by delta seconds, flooring at zero
func Shift(notes []model.Note, delta float64) []model.Note {
	out := model.CloneNotes(notes)
	for i := range out {
		out[i].Time = max(0, out[i].Time+delta)
	}
	return out
}

// Reverse mirrors start times inside the viewport. Pitches stay put.
func Reverse(notes []model.Note, vp geometry.Viewport) []model.Note {
	end := vp.End()
	out := model.CloneNotes(notes)
	for i := range out {
		out[i].Time = end - (out[i].Time - vp.Start)
	}
	return out
}

// AlignToStart moves the pattern so its earliest note sits at start
func AlignToStart(notes []model.Note, start float64) []model.Note {
	out := model.CloneNotes(notes)
	if len(out) == 0 {
		return out
	}
	first := out[0].Time
	for _, n := range out {
		first = min(first, n.Time)
	}
	offset := first - start
	for i := range out {
		out[i].Time -= offset
	}
	return out
}

// Transpose moves pitches by semitones, clamped to the note range
func Transpose(notes []model.Note, semitones int) []model.Note {
	out := model.CloneNotes(notes)
	for i := range out {
		out[i].Pitch = model.ClampPitch(out[i].Pitch + semitones)
	}
	return out
}

// Invert flips pitches around the centre of the set's pitch extent
func Invert(notes []model.Note) []model.Note {
	out := model.CloneNotes(notes)
	if len(out) == 0 {
		return out
	}
	lo, hi := out[0].Pitch, out[0].Pitch
	for _, n := range out {
		lo = min(lo, n.Pitch)
		hi = max(hi, n.Pitch)
	}
	center := float64(lo+hi) / 2
	for i := range out {
		p := math.Round(center - (float64(out[i].Pitch) - center))
		out[i].Pitch = model.ClampPitch(int(p))
	}
	return out
}

// UniformDuration gives every note the same length. Lengths below
// model.MinDuration are raised to it.
func UniformDuration(notes []model.Note, d float64) []model.Note {
	d = max(d, model.MinDuration)
	out := model.CloneNotes(notes)
	for i := range out {
		out[i].Duration = d
	}
	return out
}

// HumanizeParams controls the random jitter. Rand may be nil, in which case a
// time-seeded source is used; tests pass a seeded one.
type HumanizeParams struct {
	TimeJitter     float64 // max seconds either way
	VelocityJitter float64 // max velocity change either way
	Rand           *rand.Rand
}

// DefaultHumanize matches the stock humanize amount
var DefaultHumanize = HumanizeParams{TimeJitter: 0.05, VelocityJitter: 0.1}

// Humanize nudges start times and velocities by uniform random amounts.
// Velocity stays within [0.1, 1].
func Humanize(notes []model.Note, p HumanizeParams) []model.Note {
	r := p.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	out := model.CloneNotes(notes)
	for i := range out {
		out[i].Time = max(0, out[i].Time+uniform(r, p.TimeJitter))
		out[i].Velocity = model.Clamp(out[i].Velocity+uniform(r, p.VelocityJitter), 0.1, 1)
	}
	return out
}

func uniform(r *rand.Rand, eps float64) float64 {
	return (r.Float64()*2 - 1) * eps
}

// Mirror appends a time-reversed copy of the pattern right after the pattern's
// own last note end. The copy is in reverse array order and its ids are the
// originals suffixed with "-mirror-<index>".
func Mirror(notes []model.Note) []model.Note {
	if len(notes) == 0 {
		return model.CloneNotes(notes)
	}
	start, end := notes[0].Time, notes[0].End()
	for _, n := range notes {
		start = min(start, n.Time)
		end = max(end, n.End())
	}
	length := end - start

	out := make([]model.Note, 0, 2*len(notes))
	out = append(out, notes...)
	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		n.Time = end + (length - (n.Time - start) - n.Duration)
		n.ID = model.ID(fmt.Sprintf("%s-mirror-%d", notes[i].ID, i))
		out = append(out, n)
	}
	return out
}

// Duplicate appends a copy of the pattern shifted one viewport later, with
// ids suffixed "-dup". The shift is the viewport duration, not its end time,
// so copies of a scrolled window land just after it rather than twice as far
// from zero.
func Duplicate(notes []model.Note, vp geometry.Viewport) []model.Note {
	out := make([]model.Note, 0, 2*len(notes))
	out = append(out, notes...)
	for _, n := range notes {
		n.Time += vp.Duration
		n.ID += "-dup"
		out = append(out, n)
	}
	return out
}

// Scales maps scale names to pitch-class intervals from the root
var Scales = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"pentatonic": {0, 2, 4, 7, 9},
	"blues":      {0, 3, 5, 6, 7, 10},
	"chromatic":  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var pitchClasses = map[string]int{
	"C": 0, "C#": 1, "DB": 1, "D": 2, "D#": 3, "EB": 3, "E": 4, "F": 5,
	"F#": 6, "GB": 6, "G": 7, "G#": 8, "AB": 8, "A": 9, "A#": 10, "BB": 10, "B": 11,
}

// KeyRoot parses a key name such as "C", "f#" or "Bb" into a pitch class.
// An empty key is C.
func KeyRoot(key string) (int, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return 0, nil
	}
	pc, ok := pitchClasses[key]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", key)
	}
	return pc, nil
}

// CompressToScale moves each pitch to the nearest pitch class of the scale
// built on root, staying within the note's octave. Ties go to the lower degree.
func CompressToScale(notes []model.Note, root int, intervals []int) []model.Note {
	out := model.CloneNotes(notes)
	if len(intervals) == 0 {
		return out
	}
	classes := make([]int, len(intervals))
	for i, iv := range intervals {
		classes[i] = ((root+iv)%12 + 12) % 12
	}
	sort.Ints(classes)

	for i := range out {
		octave := out[i].Pitch / 12
		pc := out[i].Pitch % 12
		best := classes[0]
		for _, c := range classes[1:] {
			if abs(pc-c) < abs(pc-best) {
				best = c
			}
		}
		out[i].Pitch = model.ClampPitch(octave*12 + best)
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package backend

import (
	"math"
	"sort"

	"go-pianoroll/model"
)

// intervals below the melody a counter voice may sit at, in semitones
var consonances = []int{3, 4, 8, 9, 12, 15, 16}

// similar motion costs this many semitones of movement
const similarMotionPenalty = 6

// Counterpoint writes a note-against-note voice under melody using only
// pitches of the scale on root. It returns the melody and the new voice
// together, ordered by time.
func Counterpoint(melody []model.WireNote, root int, intervals []int) []model.WireNote {
	inScale := make(map[int]bool, len(intervals))
	for _, iv := range intervals {
		inScale[((iv%12)+12)%12] = true
	}
	pc := func(p int) int { return (((p - root) % 12) + 12) % 12 }

	sorted := make([]model.WireNote, len(melody))
	copy(sorted, melody)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	voice := make([]model.WireNote, 0, len(sorted))
	prev, prevMelody, prevInterval := -1, 0, 0
	for _, m := range sorted {
		best, bestInterval := -1, 0
		bestScore := math.MaxInt
		for _, iv := range consonances {
			c := m.Midi - iv
			if c < model.MinPitch || !inScale[pc(c)] {
				continue
			}
			score := 0
			if prev < 0 {
				// open on the octave when possible
				if iv != 12 {
					score = 1
				}
			} else {
				if iv%12 == 0 && prevInterval%12 == 0 {
					continue
				}
				move, melodyMove := c-prev, m.Midi-prevMelody
				score = abs(move)
				if move != 0 && melodyMove != 0 && (move > 0) == (melodyMove > 0) {
					score += similarMotionPenalty
				}
			}
			if score < bestScore {
				best, bestInterval, bestScore = c, iv, score
			}
		}
		if best < 0 {
			best, bestInterval = model.ClampPitch(m.Midi-12), 12
		}

		vel := m.Velocity
		if vel <= 0 {
			vel = model.DefaultVelocity
		}
		voice = append(voice, model.WireNote{Midi: best, Time: m.Time, Duration: m.Duration, Velocity: vel * 0.8})
		prev, prevMelody, prevInterval = best, m.Midi, bestInterval
	}

	out := append(sorted, voice...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// GenerateScale returns one octave of C major from middle C in eighth notes
// at 120 BPM
func GenerateScale() model.Document {
	var notes []model.Note
	for i, p := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		notes = append(notes, model.Note{
			Time:     float64(i) * 0.25,
			Pitch:    p,
			Duration: 0.25,
			Velocity: model.DefaultVelocity,
		})
	}
	return model.SanitizeDocument(model.Document{Tracks: []model.Track{{Name: "generated", Notes: notes}}})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

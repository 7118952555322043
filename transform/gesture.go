package transform

import (
	"go-pianoroll/model"
)

// RhythmParams describes a repeating single-pitch pattern. Interval is the rest
// after each note as a percentage of NoteDuration.
type RhythmParams struct {
	Pitch        int
	NoteDuration float64
	Interval     float64
	Total        float64
}

// DefaultRhythm is half-second notes on C4 with quarter-second rests, for four seconds
var DefaultRhythm = RhythmParams{Pitch: 60, NoteDuration: 0.5, Interval: 50, Total: 4}

func (p RhythmParams) clamped() RhythmParams {
	return RhythmParams{
		Pitch:        model.ClampPitch(p.Pitch),
		NoteDuration: model.Clamp(p.NoteDuration, 0.1, 2),
		Interval:     model.Clamp(p.Interval, 0, 200),
		Total:        model.Clamp(p.Total, 1, 10),
	}
}

// SimpleRhythm lays notes out from start, one every note duration plus rest,
// while the onset is still inside start+Total. The notes carry no ids.
func SimpleRhythm(p RhythmParams, start float64) []model.Note {
	p = p.clamped()
	period := p.NoteDuration * (1 + p.Interval/100)
	var out []model.Note
	for k := 0; ; k++ {
		at := float64(k) * period
		if at >= p.Total-1e-9 {
			break
		}
		out = append(out, model.Note{
			Time:     start + at,
			Pitch:    p.Pitch,
			Duration: p.NoteDuration,
			Velocity: model.DefaultVelocity,
		})
	}
	return out
}

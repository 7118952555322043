package geometry

import (
	"math"

	"go-pianoroll/model"
)

// Zoom limits in percent
const (
	MinZoom = 10
	MaxZoom = 500
)

// Pitch range defaults
const (
	MinSpan      = 5 // semitones
	PitchPadding = 2 // semitones each side
	RowFill      = 0.8
	DefaultLow   = 60
	DefaultHigh  = 72
)

// View holds the viewport parameters owned by one timeline
type View struct {
	PixelsPerSecond float64
	Zoom            float64 // percent
	ScrollPixels    float64
	Width           float64 // canvas width in pixels
	Height          float64 // canvas height in pixels
	Padding         float64 // vertical padding in pixels
}

// Scale returns pixels per second at the current zoom
func (v View) Scale() float64 {
	return v.PixelsPerSecond * v.Zoom / 100
}

// ClampZoom bounds a zoom percentage
func ClampZoom(z float64) float64 {
	return model.Clamp(z, MinZoom, MaxZoom)
}

// Viewport is the visible time window
type Viewport struct {
	Start    float64
	Duration float64
}

// End returns the last visible second
func (vp Viewport) End() float64 {
	return vp.Start + vp.Duration
}

// Contains reports whether t lies in [Start, End]
func (vp Viewport) Contains(t float64) bool {
	return t >= vp.Start && t <= vp.End()
}

// Viewport derives the visible window from scroll, zoom and canvas width
func (v View) Viewport() Viewport {
	s := v.Scale()
	if s <= 0 {
		return Viewport{}
	}
	return Viewport{Start: v.ScrollPixels / s, Duration: v.Width / s}
}

// PitchRange is the visible semitone span, inclusive
type PitchRange struct {
	Min, Max int
}

// Semitones returns the number of visible rows
func (r PitchRange) Semitones() int {
	return r.Max - r.Min + 1
}

// ComputePitchRange fits the visible range to the pitch extent of every note
// given, widened to MinSpan and padded by PitchPadding. With no notes it
// returns the default octave.
func ComputePitchRange(notes []model.Note, live []model.LiveNote) PitchRange {
	lo, hi := math.MaxInt, math.MinInt
	for _, n := range notes {
		lo = min(lo, n.Pitch)
		hi = max(hi, n.Pitch)
	}
	for _, l := range live {
		lo = min(lo, l.Pitch)
		hi = max(hi, l.Pitch)
	}
	if lo > hi {
		return PitchRange{Min: DefaultLow, Max: DefaultHigh}
	}

	if span := hi - lo; span < MinSpan {
		lo -= (MinSpan - span) / 2
		hi = lo + MinSpan
	}
	lo -= PitchPadding
	hi += PitchPadding

	if lo < model.MinPitch {
		hi += model.MinPitch - lo
		lo = model.MinPitch
	}
	if hi > model.MaxPitch {
		lo = max(model.MinPitch, lo-(hi-model.MaxPitch))
		hi = model.MaxPitch
	}
	return PitchRange{Min: lo, Max: hi}
}

// Mapper converts between (time, pitch) and pixel coordinates for one view
type Mapper struct {
	View  View
	Range PitchRange
}

// NewMapper builds a mapper, forcing a degenerate range open to MinSpan
func NewMapper(v View, r PitchRange) Mapper {
	if r.Max <= r.Min {
		r.Max = r.Min + MinSpan
	}
	return Mapper{View: v, Range: r}
}

// TimeToX maps seconds to an x pixel
func (m Mapper) TimeToX(t float64) float64 {
	return t*m.View.Scale() - m.View.ScrollPixels
}

// XToTime is the exact inverse of TimeToX
func (m Mapper) XToTime(x float64) float64 {
	return (x + m.View.ScrollPixels) / m.View.Scale()
}

// DurationToWidth maps a length in seconds to pixels, independent of scroll
func (m Mapper) DurationToWidth(d float64) float64 {
	return d * m.View.Scale()
}

func (m Mapper) usableHeight() float64 {
	return m.View.Height - 2*m.View.Padding
}

// PitchToY maps a pitch to the y pixel of its row centre
func (m Mapper) PitchToY(p int) float64 {
	span := float64(m.Range.Max - m.Range.Min)
	return m.View.Padding + float64(m.Range.Max-p)/span*m.usableHeight()
}

// YToPitch is the inverse of PitchToY, rounded to the nearest pitch
func (m Mapper) YToPitch(y float64) int {
	span := float64(m.Range.Max - m.Range.Min)
	return int(math.Round(float64(m.Range.Max) - (y-m.View.Padding)/m.usableHeight()*span))
}

// RowHeight is the hit-test height of a note, leaving a gutter between rows
func (m Mapper) RowHeight() float64 {
	return m.usableHeight() / float64(m.Range.Semitones()) * RowFill
}

// Rect is an axis-aligned pixel rectangle; X0 <= X1 and Y0 <= Y1
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NormRect builds a rect from two arbitrary corners
func NormRect(x1, y1, x2, y2 float64) Rect {
	return Rect{X0: math.Min(x1, x2), Y0: math.Min(y1, y2), X1: math.Max(x1, x2), Y1: math.Max(y1, y2)}
}

// Contains reports whether the point lies inside or on the edge
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Overlaps reports whether two rects share any point, edges included
func (r Rect) Overlaps(o Rect) bool {
	return r.X0 <= o.X1 && r.X1 >= o.X0 && r.Y0 <= o.Y1 && r.Y1 >= o.Y0
}

// NoteRect returns the pixel rectangle of a note
func (m Mapper) NoteRect(n model.Note) Rect {
	x := m.TimeToX(n.Time)
	y := m.PitchToY(n.Pitch)
	h := m.RowHeight() / 2
	return Rect{X0: x, Y0: y - h, X1: x + m.DurationToWidth(n.Duration), Y1: y + h}
}

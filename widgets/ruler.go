package widgets

import (
	"fmt"
	"math"
	"strings"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchLabel names a MIDI pitch, C4 being middle C (60)
func PitchLabel(pitch int) string {
	if pitch < 0 {
		return "?"
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

// RenderRuler draws a time ruler cols wide. Each column covers secondsPerCol
// starting at start; whole seconds get a tick and a label when there is room.
func RenderRuler(start, secondsPerCol float64, cols int) string {
	if cols <= 0 || secondsPerCol <= 0 {
		return ""
	}
	line := []rune(strings.Repeat(" ", cols))
	for col := 0; col < cols; {
		t0 := start + float64(col)*secondsPerCol
		next := math.Ceil(t0)
		if next >= t0+secondsPerCol {
			col++
			continue
		}
		label := fmt.Sprintf("|%gs", next)
		if col+len(label) > cols {
			line[col] = '|'
			break
		}
		copy(line[col:], []rune(label))
		col += len(label) + 1
	}
	return string(line)
}

package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/geometry"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

type cell struct {
	ch    rune
	color lipgloss.Color
	note  bool
}

// rasterize draws a frame onto a grid of terminal cells
func rasterize(f geometry.Frame, th *theme.Theme, cols, rows int) [][]cell {
	sym := th.Symbols
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: sym.Empty, color: th.Color(theme.RoleSurface)}
		}
	}

	if f.HasPlayhead {
		if c := int(f.PlayheadX / cellWidth); c >= 0 && c < cols {
			for r := range grid {
				grid[r][c] = cell{ch: sym.Playhead, color: th.Success()}
			}
		}
	}

	span := func(rect geometry.Rect) (row, c0, c1 int, ok bool) {
		row = int(((rect.Y0 + rect.Y1) / 2) / cellHeight)
		c0 = int(math.Floor(rect.X0 / cellWidth))
		c1 = max(c0, int(math.Ceil(rect.X1/cellWidth))-1)
		return row, c0, c1, row >= 0 && row < rows && c1 >= 0 && c0 < cols
	}

	for _, nb := range f.Notes {
		row, c0, c1, ok := span(nb.Rect)
		if !ok {
			continue
		}
		color := th.Velocity(nb.Note.Velocity)
		if nb.Selected {
			color = th.Cursor()
		}
		for c := max(0, c0); c <= min(cols-1, c1); c++ {
			ch := sym.NoteBody
			switch {
			case c == c0 && nb.Selected:
				ch = sym.SelectedHead
			case c == c0:
				ch = sym.NoteStart
			case grid[row][c].note:
				ch = sym.NoteOverlap
			}
			grid[row][c] = cell{ch: ch, color: color, note: true}
		}
	}

	for _, lb := range f.Live {
		row, c0, c1, ok := span(lb.Rect)
		if !ok {
			continue
		}
		for c := max(0, c0); c <= min(cols-1, c1); c++ {
			grid[row][c] = cell{ch: sym.Live, color: th.Warning(), note: true}
		}
	}

	if b := f.SelectBox; b != nil {
		r0, r1 := int(b.Y0/cellHeight), int(b.Y1/cellHeight)
		c0, c1 := int(b.X0/cellWidth), int(b.X1/cellWidth)
		for r := max(0, r0); r <= min(rows-1, r1); r++ {
			for c := max(0, c0); c <= min(cols-1, c1); c++ {
				edge := r == r0 || r == r1 || c == c0 || c == c1
				if edge && !grid[r][c].note {
					grid[r][c] = cell{ch: sym.BoxEdge, color: th.Accent()}
				}
			}
		}
	}
	return grid
}

// pitchLabel returns the label for a canvas row, or "" when the row does not
// hold the centre of any pitch
func pitchLabel(m geometry.Mapper, row int) string {
	y := float64(row*cellHeight) + cellHeight/2
	p := m.YToPitch(y)
	if int(m.PitchToY(p)/cellHeight) != row {
		return ""
	}
	return widgets.PitchLabel(p)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.theme.Warning())

	var out strings.Builder
	out.WriteString(headerStyle.Render(m.headerLine()))
	out.WriteString("\n")
	out.WriteString(m.tabLine())
	out.WriteString("\n")

	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(helpSections()))
		out.WriteString("\n\n")
		out.WriteString(widgets.RenderLegendItem(m.theme.Cursor(), m.theme.Symbols.SelectedHead, "selected", "moves with drags and edits"))
		out.WriteString("\n")
		out.WriteString(widgets.RenderLegendItem(m.theme.Warning(), m.theme.Symbols.Live, "live", "being recorded"))
		out.WriteString("\n")
		out.WriteString(dimStyle.Render("? to close"))
		return out.String()
	}

	e := m.focused()
	if e == nil {
		out.WriteString(dimStyle.Render("no layers (n for a new one)"))
		return out.String()
	}

	cols := max(1, m.width-gutterCols)
	rows := max(1, m.height-headerRows-footerRows)
	f := e.Frame()
	secondsPerCol := cellWidth / e.View().Scale()

	out.WriteString(strings.Repeat(" ", gutterCols))
	out.WriteString(dimStyle.Render(widgets.RenderRuler(f.Viewport.Start, secondsPerCol, cols)))
	out.WriteString("\n")

	grid := rasterize(f, m.theme, cols, rows)
	for r, line := range grid {
		out.WriteString(dimStyle.Render(fmt.Sprintf("%-*s", gutterCols, pitchLabel(f.Mapper, r))))
		for _, c := range line {
			out.WriteString(lipgloss.NewStyle().Foreground(c.color).Render(string(c.ch)))
		}
		out.WriteString("\n")
	}

	out.WriteString(statusStyle.Render(m.status))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyLine(keyLine)))
	return out.String()
}

func (m *Model) headerLine() string {
	e := m.focused()
	if e == nil {
		return "go-pianoroll"
	}
	mode := "VIEW"
	if e.EditMode() {
		mode = "EDIT"
	}
	vp := e.Viewport()
	rec := ""
	if m.rec != nil {
		rec = "  REC"
	}
	return fmt.Sprintf("go-pianoroll  %s  zoom %3.0f%%  %.2f-%.2fs  %d notes  %d selected%s",
		mode, e.View().Zoom, vp.Start, vp.End(), len(e.Notes()), len(e.Selected()), rec)
}

func (m *Model) tabLine() string {
	focused := m.ws.Focused()
	active := lipgloss.NewStyle().Foreground(m.theme.FG()).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(m.theme.Muted())

	var tabs []string
	for i, l := range m.ws.Layers() {
		name := l.Name
		if name == "" {
			name = "untitled"
		} else {
			name = filepath.Base(name)
		}
		label := fmt.Sprintf(" %d:%s ", i+1, name)
		if focused != nil && l.ID == focused.ID {
			tabs = append(tabs, active.Render("["+label+"]"))
		} else {
			tabs = append(tabs, inactive.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, "")
}

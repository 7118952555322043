package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"

	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/editor"
	"go-pianoroll/midi"
	"go-pianoroll/model"
	"go-pianoroll/selection"
	"go-pianoroll/theme"
	"go-pianoroll/transform"
)

// Terminal cells are mapped onto a virtual canvas of this many pixels each,
// so the editor's pixel geometry stays independent of the terminal.
const (
	cellWidth  = 10
	cellHeight = 20

	gutterCols = 5 // pitch labels
	headerRows = 3 // title, layer tabs, ruler
	footerRows = 2 // status, key line
)

// Generator fetches a fresh document from a backend
type Generator interface {
	Generate(ctx context.Context) (model.Document, error)
}

// Services are the optional collaborators of the front end. Nil fields
// disable the features that need them.
type Services struct {
	Delegate  transform.Delegate
	Generator Generator
}

type layerFile struct {
	path  string
	save  func(f func())
	dirty bool

	// version counts changes on the update loop; written is the version last
	// saved, guarded by mu together with the file itself
	version int
	mu      sync.Mutex
	written int
}

// write saves d unless a newer version already reached the file. Debounced
// writes and the flush on quit may overlap.
func (lf *layerFile) write(d model.Document, version int) error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if version <= lf.written {
		return nil
	}
	if err := midi.SaveFile(lf.path, d); err != nil {
		return err
	}
	lf.written = version
	return nil
}

type Model struct {
	ws       *editor.Workspace
	cfg      *config.Config
	theme    *theme.Theme
	services Services

	files   map[string]*layerFile // by layer id
	saveErr chan error

	width, height int
	status        string
	showHelp      bool
	quitting      bool

	// proportional duration scaling since the editor last took baselines
	durFactor float64

	rec *recording
}

type saveErrMsg struct{ err error }

type delegatedMsg struct {
	layer string
	name  string
	sent  []model.Note
	notes []model.WireNote
	err   error
}

type generatedMsg struct {
	layer string
	doc   model.Document
	err   error
}

// NewModel builds the front end over ws. Layers registered through AddFile
// autosave to their file.
func NewModel(ws *editor.Workspace, cfg *config.Config, th *theme.Theme, services Services) *Model {
	return &Model{
		ws:        ws,
		cfg:       cfg,
		theme:     th,
		services:  services,
		files:     make(map[string]*layerFile),
		saveErr:   make(chan error, 8),
		durFactor: 1,
	}
}

// AddFile opens a layer for doc that saves back to path after edits settle
func (m *Model) AddFile(path string, doc model.Document) *editor.Layer {
	e := editor.New(doc, m.cfg.ViewFor(m.canvasSize()))
	e.SetEditMode(true)
	l := m.ws.AddLayer(path, e)

	lf := &layerFile{path: path}
	if path != "" && m.cfg.Autosave > 0 {
		lf.save = debounce.New(m.cfg.Autosave)
	}
	m.files[l.ID] = lf
	e.OnChange(func(d model.Document) {
		lf.dirty = true
		lf.version++
		if lf.save == nil {
			return
		}
		v := lf.version
		lf.save(func() {
			if err := lf.write(d, v); err != nil {
				m.saveErr <- err
			}
		})
	})
	return l
}

func listenForSaveErrors(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return saveErrMsg{err: <-ch}
	}
}

func (m *Model) Init() tea.Cmd {
	return listenForSaveErrors(m.saveErr)
}

func (m *Model) canvasSize() (float64, float64) {
	cols := max(1, m.width-gutterCols)
	rows := max(1, m.height-headerRows-footerRows)
	return float64(cols * cellWidth), float64(rows * cellHeight)
}

func (m *Model) focused() *editor.Editor {
	if l := m.ws.Focused(); l != nil {
		return l.Editor
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.canvasSize()
		for _, l := range m.ws.Layers() {
			l.Editor.Resize(w, h)
		}

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case tea.MouseMsg:
		m.handleMouse(msg)

	case saveErrMsg:
		m.status = "save failed: " + msg.err.Error()
		debug.Warn("tui", "autosave: %v", msg.err)
		return m, listenForSaveErrors(m.saveErr)

	case delegatedMsg:
		m.applyDelegated(msg)

	case generatedMsg:
		l := m.ws.Layer(msg.layer)
		if msg.err != nil {
			m.status = "generate failed: " + msg.err.Error()
		} else if l != nil {
			l.Editor.SetDocument(msg.doc)
			m.status = fmt.Sprintf("generated %d notes", len(l.Editor.Notes()))
		}

	case recordMsg:
		return m, m.handleRecordEvent(msg)

	case recordTickMsg:
		return m, m.handleRecordTick()
	}

	return m, nil
}

// toCanvas maps a terminal cell to the centre of its virtual pixel block
func toCanvas(x, y int) (float64, float64, bool) {
	cx, cy := x-gutterCols, y-headerRows
	px := float64(cx*cellWidth) + cellWidth/2
	py := float64(cy*cellHeight) + cellHeight/2
	return px, py, cx >= 0 && cy >= 0
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	e := m.focused()
	if e == nil {
		return
	}
	px, py, inside := toCanvas(msg.X, msg.Y)
	w, h := m.canvasSize()
	inside = inside && px < w && py < h

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			e.Scroll(-cellWidth * 4)
		case tea.MouseButtonWheelDown:
			e.Scroll(cellWidth * 4)
		case tea.MouseButtonLeft:
			if inside {
				mods := selection.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt}
				if !e.PointerDown(px, py, mods) {
					m.status = "edit mode is off (e)"
				}
			}
		}
	case tea.MouseActionMotion:
		if inside {
			e.PointerMove(px, py)
		}
	case tea.MouseActionRelease:
		if inside {
			e.PointerUp(px, py)
		} else {
			e.PointerLost()
		}
	}
}

func (m *Model) handleKey(key string) tea.Cmd {
	e := m.focused()

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.stopRecording()
		m.flush()
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return nil
	case "tab":
		if l := m.ws.FocusNext(); l != nil {
			m.status = "focus " + l.Name
		}
		return nil
	case "n":
		l := m.AddFile("", model.Document{Tracks: []model.Track{{}}})
		m.ws.Focus(l.ID)
		m.status = "new layer"
		return nil
	case "r":
		return m.toggleRecording()
	}

	if e == nil {
		return nil
	}

	switch key {
	case "left", "h":
		e.Scroll(-cellWidth * 8)
	case "right", "l":
		e.Scroll(cellWidth * 8)
	case "+", "=":
		e.SetZoom(e.View().Zoom * 1.25)
	case "-", "_":
		e.SetZoom(e.View().Zoom / 1.25)
	case "[":
		m.scaleDurations(e, 0.8)
	case "]":
		m.scaleDurations(e, 1.25)
	case "C":
		return m.delegate(e, "counterpoint")
	case "G":
		return m.generate()
	case "P":
		n := e.AddRhythm(m.cfg.RhythmParams())
		m.status = fmt.Sprintf("rhythm: %d notes", n)
	default:
		if name, p, ok := m.transformFor(key); ok {
			if err := e.ApplyTransform(name, p); err != nil {
				m.status = name + ": " + err.Error()
			} else {
				m.status = name
			}
			return nil
		}
		if m.ws.HandleKey(key) {
			m.status = ""
		}
	}
	return nil
}

func (m *Model) scaleDurations(e *editor.Editor, step float64) {
	if !e.ScalingDurations() {
		m.durFactor = 1
	}
	m.durFactor *= step
	if err := e.ScaleSelectedDurations(m.durFactor); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("duration x%.2f", m.durFactor)
}

func (m *Model) delegate(e *editor.Editor, name string) tea.Cmd {
	if m.services.Delegate == nil {
		m.status = "no backend configured"
		return nil
	}
	in := transform.InViewport(e.Notes(), e.Viewport())
	if len(in) == 0 {
		m.status = transform.ErrEmptyViewport.Error()
		return nil
	}
	layer := m.ws.Focused().ID
	wire := model.ToWire(in)
	params := m.cfg.DelegateParams()
	d := m.services.Delegate
	m.status = name + "..."
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		out, err := d.Transform(ctx, name, wire, params)
		return delegatedMsg{layer: layer, name: name, sent: in, notes: out, err: err}
	}
}

// applyDelegated splices a reply on the update loop, against the notes that
// were sent rather than whatever is visible now
func (m *Model) applyDelegated(msg delegatedMsg) {
	l := m.ws.Layer(msg.layer)
	if l == nil {
		return
	}
	if msg.err != nil {
		m.status = fmt.Sprintf("delegated %s: %v", msg.name, msg.err)
		debug.Warn("tui", "delegated %s failed: %v", msg.name, msg.err)
		return
	}
	l.Editor.ApplyReply(msg.sent, msg.notes)
	m.status = fmt.Sprintf("%s: %d notes", msg.name, len(msg.notes))
}

func (m *Model) generate() tea.Cmd {
	if m.services.Generator == nil {
		m.status = "no backend configured"
		return nil
	}
	layer := m.ws.Focused().ID
	g := m.services.Generator
	m.status = "generating..."
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		doc, err := g.Generate(ctx)
		return generatedMsg{layer: layer, doc: doc, err: err}
	}
}

// flush saves every edited file-backed layer right away
func (m *Model) flush() {
	for _, l := range m.ws.Layers() {
		lf := m.files[l.ID]
		if lf == nil || lf.path == "" || !lf.dirty {
			continue
		}
		if lf.save != nil {
			// drop the pending debounced write
			lf.save(func() {})
		}
		if err := lf.write(l.Editor.Document(), lf.version); err != nil {
			debug.Warn("tui", "save %s: %v", lf.path, err)
		}
	}
}

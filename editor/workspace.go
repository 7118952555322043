package editor

import (
	"github.com/google/uuid"

	"go-pianoroll/debug"
)

// Layer is one editor in a workspace
type Layer struct {
	ID     string
	Name   string
	Muted  bool
	Editor *Editor
}

// Workspace holds independent layers. Only the focused one receives keys.
type Workspace struct {
	layers  []*Layer
	focused string
}

// NewWorkspace creates an empty workspace
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// AddLayer adds an editor under a fresh id. The first layer gets focus.
func (w *Workspace) AddLayer(name string, e *Editor) *Layer {
	l := &Layer{ID: uuid.NewString(), Name: name, Editor: e}
	w.layers = append(w.layers, l)
	if w.focused == "" {
		w.focused = l.ID
	}
	return l
}

// Layers returns the layers in order
func (w *Workspace) Layers() []*Layer {
	return w.layers
}

// Layer returns the layer with id, or nil
func (w *Workspace) Layer(id string) *Layer {
	for _, l := range w.layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Focus gives keyboard focus to a layer
func (w *Workspace) Focus(id string) bool {
	if w.Layer(id) == nil {
		return false
	}
	w.focused = id
	return true
}

// Focused returns the layer holding keyboard focus, or nil
func (w *Workspace) Focused() *Layer {
	return w.Layer(w.focused)
}

// FocusNext cycles focus forward and returns the new focused layer
func (w *Workspace) FocusNext() *Layer {
	if len(w.layers) == 0 {
		return nil
	}
	next := 0
	for i, l := range w.layers {
		if l.ID == w.focused {
			next = (i + 1) % len(w.layers)
			break
		}
	}
	w.focused = w.layers[next].ID
	return w.layers[next]
}

// HandleKey routes a key to the focused layer. Returns true if it was consumed.
func (w *Workspace) HandleKey(key string) bool {
	l := w.Focused()
	if l == nil {
		return false
	}
	switch key {
	case "delete", "backspace", "x":
		ok := l.Editor.Delete()
		debug.Log("editor", "key %q on layer %s: %v", key, l.Name, ok)
		return ok
	case "e":
		l.Editor.SetEditMode(!l.Editor.EditMode())
		return true
	}
	return false
}

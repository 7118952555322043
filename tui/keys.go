package tui

import (
	"go-pianoroll/transform"
	"go-pianoroll/widgets"
)

// transformKey binds a key to a named transform. tweak adjusts the configured
// parameters for keys that share a transform, e.g. transpose up and down.
type transformKey struct {
	key   string
	name  string
	desc  string
	tweak func(p *transform.Params)
}

var transformKeys = []transformKey{
	{key: "up", name: "transpose", desc: "transpose +1", tweak: func(p *transform.Params) { p.Semitones = 1 }},
	{key: "down", name: "transpose", desc: "transpose -1", tweak: func(p *transform.Params) { p.Semitones = -1 }},
	{key: "T", name: "transpose", desc: "transpose by config"},
	{key: ">", name: "shift", desc: "shift later"},
	{key: "<", name: "shift", desc: "shift earlier", tweak: func(p *transform.Params) { p.Shift = -p.Shift }},
	{key: "Q", name: "quantize", desc: "quantize"},
	{key: "S", name: "evenly-space", desc: "evenly space"},
	{key: "R", name: "reverse", desc: "reverse"},
	{key: "M", name: "mirror", desc: "mirror"},
	{key: "D", name: "duplicate", desc: "duplicate"},
	{key: "I", name: "invert", desc: "invert"},
	{key: "H", name: "humanize", desc: "humanize"},
	{key: "A", name: "align-start", desc: "align to start"},
	{key: "U", name: "uniform-duration", desc: "uniform duration"},
	{key: "K", name: "compress-to-scale", desc: "snap to scale"},
	{key: "X", name: "scale", desc: "scale timing"},
}

func (m *Model) transformFor(key string) (string, transform.Params, bool) {
	for _, tk := range transformKeys {
		if tk.key != key {
			continue
		}
		p := m.cfg.TransformParams()
		if tk.tweak != nil {
			tk.tweak(&p)
		}
		return tk.name, p, true
	}
	return "", transform.Params{}, false
}

func helpSections() []widgets.KeySection {
	var tkeys []widgets.KeyBinding
	for _, tk := range transformKeys {
		tkeys = append(tkeys, widgets.KeyBinding{Key: tk.key, Desc: tk.desc})
	}
	return []widgets.KeySection{
		{Title: "Edit", Keys: []widgets.KeyBinding{
			{Key: "click", Desc: "select note"},
			{Key: "shift+click", Desc: "add to selection"},
			{Key: "ctrl+click", Desc: "toggle note"},
			{Key: "drag", Desc: "move selection / box select"},
			{Key: "x / del", Desc: "delete selection"},
			{Key: "[ / ]", Desc: "shorter / longer"},
			{Key: "e", Desc: "toggle edit mode"},
			{Key: "P", Desc: "add rhythm at view start"},
		}},
		{Title: "Transform (visible notes)", Keys: tkeys},
		{Title: "Backend", Keys: []widgets.KeyBinding{
			{Key: "C", Desc: "add counterpoint"},
			{Key: "G", Desc: "generate"},
		}},
		{Title: "View", Keys: []widgets.KeyBinding{
			{Key: "h / l", Desc: "scroll"},
			{Key: "+ / -", Desc: "zoom"},
			{Key: "tab", Desc: "next layer"},
			{Key: "n", Desc: "new layer"},
			{Key: "r", Desc: "record on/off"},
			{Key: "q", Desc: "quit"},
		}},
	}
}

var keyLine = []widgets.KeyBinding{
	{Key: "e", Desc: "edit"},
	{Key: "x", Desc: "delete"},
	{Key: "h/l", Desc: "scroll"},
	{Key: "+/-", Desc: "zoom"},
	{Key: "tab", Desc: "layer"},
	{Key: "?", Desc: "help"},
	{Key: "q", Desc: "quit"},
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"go-pianoroll/backend"
	"go-pianoroll/config"
	"go-pianoroll/editor"
	"go-pianoroll/midi"
	"go-pianoroll/model"
	"go-pianoroll/selection"
	"go-pianoroll/transform"
)

// canvas the shell's editor pretends to have; it only decides the viewport
const (
	replWidth  = 800
	replHeight = 480
)

func init() {
	rootCmd.AddCommand(replCmd)
}

var replCmd = &cobra.Command{
	Use:   "repl <file.mid>",
	Short: "Edit a file from a command shell",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(args[0])
		if err != nil {
			return err
		}
		env := newEnv(args[0], doc, cfg)
		env.delegate = backend.NewClient(cfg.Backend.URL)
		if err := repl(env); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	},
}

type env struct {
	path     string
	editor   *editor.Editor
	cfg      *config.Config
	delegate transform.Delegate
	dirty    bool
}

func newEnv(path string, doc model.Document, cfg *config.Config) *env {
	e := editor.New(doc, cfg.ViewFor(replWidth, replHeight))
	e.SetEditMode(true)
	env := &env{path: path, editor: e, cfg: cfg}
	e.OnChange(func(model.Document) { env.dirty = true })
	return env
}

func (e *env) eval(input string) (string, error) {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		switch {
		case cmd.arity == anyArgs:
		case cmd.arity < 0:
			arity := -cmd.arity
			if len(args) < arity {
				return "", fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(args))
			}
		case len(args) != cmd.arity:
			return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(args))
		}
		result, err := cmd.run(e, args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

func repl(env *env) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			if env.dirty {
				fmt.Println("unsaved changes; use save")
			}
			return io.EOF
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if strings.TrimSpace(line) == "quit" {
			return nil
		}
		if result, err := env.eval(line); err != nil {
			fmt.Println(err)
		} else if result != "" {
			fmt.Println(result)
		}
	}
}

type command struct {
	name  string
	run   func(*env, []string) (string, error)
	arity int // -n means len(args) must be >= n
}

// anyArgs leaves argument checking to the command
const anyArgs = -1 << 16

var commands []command

func init() {
	commands = []command{
		{"list", listCommand, 0},
		{"view", viewCommand, 0},
		{"select", selectCommand(selection.Modifiers{}), -1},
		{"add", selectCommand(selection.Modifiers{Shift: true}), -1},
		{"toggle", selectCommand(selection.Modifiers{Ctrl: true}), -1},
		{"delete", deleteCommand, 0},
		{"stretch", stretchCommand, 1},
		{"scroll", scrollCommand, 1},
		{"zoom", zoomCommand, 1},
		{"apply", applyCommand, 1},
		{"transforms", transformsCommand, 0},
		{"counterpoint", counterpointCommand, 0},
		{"rhythm", rhythmCommand, anyArgs},
		{"save", saveCommand, 0},
		{"help", helpCommand, 0},
	}
}

func readFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func listCommand(env *env, _ []string) (string, error) {
	selected := make(map[model.ID]bool)
	for _, id := range env.editor.Selected() {
		selected[id] = true
	}
	vp := env.editor.Viewport()
	var b strings.Builder
	for _, n := range transform.SortByTime(env.editor.Notes()) {
		mark := " "
		if selected[n.ID] {
			mark = "*"
		}
		vis := ""
		if vp.Contains(n.Time) {
			vis = " visible"
		}
		fmt.Fprintf(&b, "%s %-10s %7.3fs  pitch %3d  dur %.3fs  vel %.2f%s\n",
			mark, n.ID, n.Time, n.Pitch, n.Duration, n.Velocity, vis)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func viewCommand(env *env, _ []string) (string, error) {
	vp := env.editor.Viewport()
	return fmt.Sprintf("%.3fs to %.3fs at %.0f%% zoom, %d notes, %d selected",
		vp.Start, vp.End(), env.editor.View().Zoom, len(env.editor.Notes()), len(env.editor.Selected())), nil
}

func selectCommand(mods selection.Modifiers) func(*env, []string) (string, error) {
	return func(env *env, args []string) (string, error) {
		ids := make([]model.ID, len(args))
		for i, a := range args {
			ids[i] = model.ID(a)
		}
		env.editor.Select(ids, mods)
		return fmt.Sprintf("%d selected", len(env.editor.Selected())), nil
	}
}

func deleteCommand(env *env, _ []string) (string, error) {
	n := len(env.editor.Selected())
	if !env.editor.Delete() {
		return "", editor.ErrEmptySelection
	}
	return fmt.Sprintf("deleted %d notes", n), nil
}

// stretchCommand scales selected durations against the lengths they had
// when stretching began, so "stretch 2" then "stretch 1" restores them
func stretchCommand(env *env, args []string) (string, error) {
	f, err := readFloat(args[0])
	if err != nil {
		return "", err
	}
	if err := env.editor.ScaleSelectedDurations(f); err != nil {
		return "", err
	}
	return fmt.Sprintf("durations x%.2f", f), nil
}

func scrollCommand(env *env, args []string) (string, error) {
	secs, err := readFloat(args[0])
	if err != nil {
		return "", err
	}
	env.editor.Scroll(secs * env.editor.View().Scale())
	return viewCommand(env, nil)
}

func zoomCommand(env *env, args []string) (string, error) {
	z, err := readFloat(args[0])
	if err != nil {
		return "", err
	}
	env.editor.SetZoom(z)
	return viewCommand(env, nil)
}

func applyCommand(env *env, args []string) (string, error) {
	if err := env.editor.ApplyTransform(args[0], env.cfg.TransformParams()); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s applied, %d notes", args[0], len(env.editor.Notes())), nil
}

func transformsCommand(_ *env, _ []string) (string, error) {
	return strings.Join(transform.Names(), " "), nil
}

func counterpointCommand(env *env, _ []string) (string, error) {
	if env.delegate == nil {
		return "", errors.New("no backend configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	before := len(env.editor.Notes())
	if err := env.editor.ApplyDelegated(ctx, env.delegate, "counterpoint", env.cfg.DelegateParams()); err != nil {
		return "", err
	}
	return fmt.Sprintf("counterpoint: %d notes, was %d", len(env.editor.Notes()), before), nil
}

// rhythmCommand takes optional note, duration, interval and total, in that
// order; missing ones come from the config
func rhythmCommand(env *env, args []string) (string, error) {
	if len(args) > 4 {
		return "", errors.New("usage: rhythm [note [duration [interval [total]]]]")
	}
	p := env.cfg.RhythmParams()
	fields := []*float64{nil, &p.NoteDuration, &p.Interval, &p.Total}
	for i, a := range args {
		v, err := readFloat(a)
		if err != nil {
			return "", err
		}
		if i == 0 {
			p.Pitch = int(v)
			continue
		}
		*fields[i] = v
	}
	n := env.editor.AddRhythm(p)
	return fmt.Sprintf("rhythm: %d notes", n), nil
}

func saveCommand(env *env, _ []string) (string, error) {
	if err := midi.SaveFile(env.path, env.editor.Document()); err != nil {
		return "", err
	}
	env.dirty = false
	return "saved " + env.path, nil
}

func helpCommand(_ *env, _ []string) (string, error) {
	names := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		names = append(names, c.name)
	}
	return strings.Join(append(names, "quit"), " "), nil
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"go-pianoroll/backend"
	"go-pianoroll/editor"
	"go-pianoroll/midi"
	"go-pianoroll/model"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

var paletteFile string

func init() {
	editCmd.Flags().StringVar(&paletteFile, "palette", "", "GIMP palette (.gpl) to color notes with")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit [file.mid...]",
	Short: "Open files in the piano roll",
	Long: `Opens each file as a layer. Files that do not exist yet start empty
and are created on the first save. Edits are saved automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditor(args)
	},
}

// openDocument loads path, or returns an empty one-track document if the
// file does not exist yet
func openDocument(path string) (model.Document, error) {
	doc, err := midi.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Document{Tracks: []model.Track{{}}}, nil
	}
	return doc, err
}

func runEditor(paths []string) error {
	palette, err := theme.Load(paletteFile)
	if err != nil {
		return err
	}

	client := backend.NewClient(cfg.Backend.URL)
	m := tui.NewModel(editor.NewWorkspace(), cfg, theme.New(palette), tui.Services{
		Delegate:  client,
		Generator: client,
	})

	if len(paths) == 0 {
		m.AddFile("", model.Document{Tracks: []model.Track{{}}})
	}
	for _, p := range paths {
		doc, err := openDocument(p)
		if err != nil {
			return err
		}
		m.AddFile(p, doc)
	}
	defer midi.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"

	"go-pianoroll/config"
	"go-pianoroll/debug"
)

var (
	flags *config.Flags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pianoroll",
	Short: "Terminal piano-roll editor",
	Long: `pianoroll edits MIDI files as a piano roll in the terminal.
It can also run the generation backend and a line-oriented editing shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = flags.Load()
		if err != nil {
			return err
		}
		if cfg.Debug {
			return debug.Enable("")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	flags = config.BindFlags(rootCmd.PersistentFlags())
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

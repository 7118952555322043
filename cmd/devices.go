package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-pianoroll/midi"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Lists MIDI ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.Close()
		ports, err := midi.Devices()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "inputs:")
		for i, name := range ports.In {
			fmt.Fprintf(out, "  %d: %s\n", i, name)
		}
		fmt.Fprintln(out, "outputs:")
		for i, name := range ports.Out {
			fmt.Fprintf(out, "  %d: %s\n", i, name)
		}
		return nil
	},
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-pianoroll/backend"
	"go-pianoroll/debug"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the generation backend",
	Long: `Serves counterpoint generation, scale generation and MIDI export over
HTTP for the editor and browser front ends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Debug {
			debug.EnableWriter(os.Stderr)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", cfg.Backend.Listen)
		return backend.NewServer(cfg.Backend.Origins).Run(ctx, cfg.Backend.Listen)
	},
}

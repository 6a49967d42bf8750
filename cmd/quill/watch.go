package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <files...>",
	Short: "Recompile documents whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println("Press Ctrl+C to stop watching.")
		if err := session.Watch(ctx, args); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Println("bye!")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

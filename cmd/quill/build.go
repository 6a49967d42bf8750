package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <files...>",
	Short: "Compile quill documents to LaTeX",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		defer session.Close()

		failed := 0
		for _, path := range args {
			if _, err := session.CompileFile(cmd.Context(), path); err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to compile", failed, len(args))
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterDocument = `docclass article (a4paper)
import geometry (margin=1in)

startdoc

Hello, quill!

script
    quill.sprintln("This paragraph was generated by a script.")
endscript
`

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a starter quill document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "main.qll"
		if len(args) == 1 {
			name = args[0]
		}
		if _, err := os.Stat(name); err == nil {
			return fmt.Errorf("%s already exists", name)
		}
		if err := os.WriteFile(name, []byte(starterDocument), 0o644); err != nil {
			return fmt.Errorf("cannot create %s: %w", name, err)
		}
		fmt.Println("created", name)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

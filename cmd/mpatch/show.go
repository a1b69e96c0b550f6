package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsnanigans/mpatch/pkg/mpatch"
)

var showCmd = &cobra.Command{
	Use:   "show <patch-file>",
	Short: "Pretty-print the hunks of a serialized patch",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	patches, err := mpatch.ParsePatches(data)
	if err != nil {
		return err
	}
	for i, p := range patches {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(mpatch.RenderPatch(p, true))
	}
	return nil
}

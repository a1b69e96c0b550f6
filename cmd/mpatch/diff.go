package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsnanigans/mpatch/pkg/mpatch"
)

var (
	diffContext int
	diffSource  string
	diffOut     string
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-file> <new-file>",
	Short: "Record the changes between two files as a patch",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().IntVarP(&diffContext, "context", "C", mpatch.DefaultContext, "unchanged lines kept around each change")
	diffCmd.Flags().StringVar(&diffSource, "source", "", "source label recorded in the patch (defaults to the old file path)")
	diffCmd.Flags().StringVarP(&diffOut, "out", "o", "", "write the patch to this file instead of stdout")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldData, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	newData, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	source := diffSource
	if source == "" {
		source = args[0]
	}
	p, err := mpatch.GeneratePatch(string(oldData), string(newData), source, diffContext)
	if err != nil {
		return err
	}
	if len(p.Hunks) == 0 {
		fmt.Fprintln(os.Stderr, "files are identical, empty patch written")
	}
	return writeOutput(diffOut, mpatch.Serialize(p))
}

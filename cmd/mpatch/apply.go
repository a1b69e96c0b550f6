package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsnanigans/mpatch/pkg/mpatch"
)

var (
	applyFilters  string
	applyRejects  string
	applyOut      string
	applyDryRun   bool
	applyWindow   int
	applyMinMatch float64
	applyMaxSlack int
	applyMaxLines int
)

var applyCmd = &cobra.Command{
	Use:   "apply <patch-file> <target-file>",
	Short: "Replay a patch onto a target, relocating drifted hunks",
	Long: `apply reads one or more serialized patches and replays them onto the
target file in order. Hunks that no longer match their recorded position
are relocated by content; hunks that cannot be located, and removals
whose line has disappeared, are reported without failing the run.

By default the target is rewritten in place. Use --dry-run to only print
the report, or --out to write the result elsewhere.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyFilters, "filters", "", "YAML filter configuration file")
	applyCmd.Flags().StringVar(&applyRejects, "rejects", "", "write rejected removals to this file")
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "", "write the patched text here instead of in place")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "report what would happen without writing")
	applyCmd.Flags().IntVar(&applyWindow, "window", 0, "relocation scan distance in lines (0 = proportional)")
	applyCmd.Flags().Float64Var(&applyMinMatch, "min-match", 0, "minimum match score to accept a location (0 = default)")
	applyCmd.Flags().IntVar(&applyMaxSlack, "max-slack", 0, "unmatched lines tolerated between matches (0 = default)")
	applyCmd.Flags().IntVar(&applyMaxLines, "max-lines", 0, "refuse targets larger than this many lines (0 = unlimited)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	patchData, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	patches, err := mpatch.ParsePatches(patchData)
	if err != nil {
		return err
	}
	targetData, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	opts := mpatch.ApplyOptions{
		Locate: mpatch.LocateConfig{
			Window:   applyWindow,
			MinMatch: applyMinMatch,
			MaxSlack: applyMaxSlack,
		},
		MaxTargetLines: applyMaxLines,
	}
	if applyFilters != "" {
		filterData, err := os.ReadFile(applyFilters)
		if err != nil {
			return err
		}
		opts.Filters, err = mpatch.ParseFilterConfig(filterData)
		if err != nil {
			return err
		}
	}

	text := string(targetData)
	clean := true
	var rejects []string
	for _, p := range patches {
		result, report, err := mpatch.Apply(p, text, opts)
		if err != nil {
			return err
		}
		text = result
		fmt.Fprint(os.Stderr, mpatch.RenderReport(report, true))
		if !report.FullyApplied() {
			clean = false
		}
		for _, h := range report.Hunks {
			for _, rej := range h.Rejects {
				rejects = append(rejects, rej.Text)
			}
		}
	}

	if applyRejects != "" && len(rejects) > 0 {
		if err := os.WriteFile(applyRejects, []byte(strings.Join(rejects, "\n")+"\n"), 0644); err != nil {
			return err
		}
	}
	if applyDryRun {
		return nil
	}

	out := applyOut
	if out == "" {
		out = args[1]
	}
	if err := writeOutput(out, []byte(text)); err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("applied with unplaced hunks or rejects, see report")
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-crashkit/internal/output"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

type summarizeOptions struct {
	outputDir string
}

func newSummarizeCmd(root *rootOptions) *cobra.Command {
	opts := &summarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize <bundle-dir>",
		Short: "Write summary.json and summary.txt for a collected bundle",
		Long: `Parse the crash reports, artifact counts, system snapshots and event logs of
<bundle-dir> and write summary.json and summary.txt.

Files go to --output, or to the bundle directory itself when unset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory for summary files (default: bundle dir)")
	return cmd
}

func runSummarize(cmd *cobra.Command, root *rootOptions, opts *summarizeOptions, bundleDir string) (err error) {
	rt, err := setup(cmd, root)
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() { rt.finish("summarize", start, err) }()

	pipeline, err := rt.pipeline(true)
	if err != nil {
		return err
	}

	summary, err := pipeline.Summarize(cmd.Context(), bundleDir)
	switch {
	case errors.Is(err, utils.ErrBundleNotFound):
		return fmt.Errorf("bundle directory not found: %s (point at the unzipped crash-<timestamp> folder)", bundleDir)
	case errors.Is(err, utils.ErrBundleNotDir):
		return fmt.Errorf("bundle path is not a directory: %s (extract the zip first)", bundleDir)
	case err != nil:
		return err
	}

	dir := opts.outputDir
	if dir == "" {
		dir = summary.BundleDir
	}
	paths, err := output.WriteSummary(dir, summary)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Summary written")
	fmt.Fprintf(out, "JSON: %s\n", paths.JSON)
	fmt.Fprintf(out, "Text: %s\n", paths.Text)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-crashkit/internal/output"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

type analyzeOptions struct {
	top      int
	keyLines int
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <bundle-dir>",
		Short: "Print a triage report from a bundle's exported event logs",
		Long: `Load the event-log exports under <bundle-dir>/logs, rank suspect failure
categories and list the high-signal event lines.

Exits with status 2 when the bundle is missing or has no events.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.top, "top", 0, "Number of suspect buckets to show (default from config)")
	f.IntVar(&opts.keyLines, "key-lines", 0, "Number of high-signal lines to show (default from config)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, bundleDir string) (err error) {
	rt, err := setup(cmd, root)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("key-lines") {
		rt.cfg.Analysis.KeyLineLimit = opts.keyLines
	}
	top := rt.cfg.Analysis.TopSuspects
	if cmd.Flags().Changed("top") {
		top = opts.top
	}

	start := time.Now()
	defer func() { rt.finish("analyze", start, err) }()

	pipeline, err := rt.pipeline(false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	inspection, err := pipeline.Inspect(cmd.Context(), bundleDir)
	switch {
	case errors.Is(err, utils.ErrBundleNotFound), errors.Is(err, utils.ErrBundleNotDir):
		fmt.Fprintf(out, "Path not found: %s\n", bundleDir)
		return &exitError{code: exitNoData, err: err}
	case errors.Is(err, utils.ErrNoEvents):
		fmt.Fprintln(out, output.NoEventsMessage)
		return &exitError{code: exitNoData, err: err}
	case err != nil:
		return err
	}
	return output.RenderInspection(out, inspection, top)
}

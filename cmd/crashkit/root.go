package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	configPath      string
	logLevel        string
	logJSON         bool
	metricsTextfile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "crashkit",
		Short: "Triage Windows crash-artifact bundles",
		Long: "crashkit correlates exported event logs, Windows Error Reporting files\n" +
			"and system snapshots from a collected bundle into a triage report.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to configuration file (env MIRADOR_CRASHKIT_CONFIG)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	f.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write run metrics to this Prometheus textfile")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newSummarizeCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

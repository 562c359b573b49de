// crashkit triages Windows crash-artifact bundles: it correlates exported
// event logs and crash reports into a console report or summary files, and
// can serve the same analysis over gRPC.
//
// Usage:
//
//	crashkit analyze <bundle-dir>
//	crashkit summarize <bundle-dir> [-o <output-dir>]
//	crashkit serve [--config <path>]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps the outcome to a process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, exit.err)
		}
		return exit.code
	}
	fmt.Fprintln(stderr, err)
	return 1
}

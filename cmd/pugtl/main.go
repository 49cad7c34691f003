// Command pugtl translates the Spanish display text of Pug templates to
// English in place.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// errFilesFailed is returned when at least one file could not be rewritten.
// The report has already been printed.
var errFilesFailed = errors.New("some files failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

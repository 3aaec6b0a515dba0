// main is the entry point for the paperlapse CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jank324/paper-lapse/cmd"
	"github.com/jank324/paper-lapse/internal/runstore"
)

func main() {
	err := cmd.Execute()

	// Cleanup happens after Execute returns so that deferred closes run
	// even when a command failed.
	runstore.CloseStore()
	if perr := cmd.StopProfiling(); perr != nil {
		fmt.Fprintf(os.Stderr, "Warn profiling cleanup: %v\n", perr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

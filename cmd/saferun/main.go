// Command saferun is a demo CLI wrapping internal/host, for running a script
// file or inline expression under the interpreter's resource ceilings.
package main

import (
	"os"

	"github.com/cwbudde/go-saferun/cmd/saferun/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

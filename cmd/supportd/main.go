// Command supportd is the entry point for the support knowledge assistant.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// question-answering API used by the support tooling.
package main

import (
	"fmt"
	"os"

	"github.com/Jayati0502/gfi-ikras-project/cmd/supportd/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

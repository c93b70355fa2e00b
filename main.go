// Idiomatic entrypoint for the Cobra CLI; delegates to cmd/root.go.
package main

import (
	"github.com/brgz/tricycle-sim/cmd"
)

func main() {
	cmd.Execute()
}

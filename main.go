// The main package for the sitescout executable.
package main

import (
	"github.com/stordev/sitescout/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}

package main

import (
	"github.com/mj1618/autodoc-cli/cmd"

	// Registers the robotgo-backed platform provider.
	_ "github.com/mj1618/autodoc-cli/internal/platform/robot"
)

func main() {
	cmd.Execute()
}

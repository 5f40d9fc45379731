package main

import (
	"os"

	"github.com/kindling-dev/kindling/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

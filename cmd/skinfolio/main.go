package main

import (
	"os"

	"github.com/skinfolio/skinfolio/cmd/skinfolio/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

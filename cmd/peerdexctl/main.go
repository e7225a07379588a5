package main

import (
	"os"

	"github.com/peerdex/peerdex/cmd/peerdexctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"securejoin/cmd/securejoin/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

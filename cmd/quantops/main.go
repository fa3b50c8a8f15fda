package main

import (
	"os"

	"github.com/rustyeddy/quantops/cmd/quantops/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/QuickFlo/condkit/cmd/condkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

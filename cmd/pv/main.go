package main

import (
	"os"

	"github.com/tormodhaugland/pv/cmd/pv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

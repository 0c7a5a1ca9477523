// Package main is the entry point for the mediapress application.
package main

import (
	"os"

	"github.com/jmylchreest/mediapress/cmd/mediapress/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides the roastery command.
package main

import (
	"os"

	"github.com/leapstack-labs/roastery/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

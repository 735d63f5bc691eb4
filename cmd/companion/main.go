package main

import (
	"fmt"
	"os"

	"github.com/ledgerbird/companion-cli/cmd/companion/cmd"
)

// Version information - set by goreleaser at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "companion: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
)

var (
	// Version, GitCommit and BuildDate are set with -ldflags at release time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

package main

import "fmt"

// Version and Commit can be injected at build time with -ldflags.
var (
	Version = "0.1.0"
	Commit  = "dev"
)

func printVersion() {
	fmt.Fprintf(stdOut, "cachectl %s (%s)\n", Version, Commit)
}

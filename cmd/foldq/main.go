// Package main is the entry point for the foldq CLI.
package main

import (
	"fmt"
	"os"

	"github.com/foldq/foldq/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

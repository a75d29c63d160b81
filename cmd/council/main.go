// cmd/council/main.go
//
// Entry point for the council CLI. Running `council` from a project
// directory initializes the .council folder on first use; subcommands
// run debate iterations, inspect weights, serve the bridge, or open
// the dashboard.

package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "council: %v\n", err)
		os.Exit(1)
	}
}

// jl is the CLI for jira-lite, a tiny epic/story tracker stored in one JSON file.
package main

import (
	"fmt"
	"os"

	"jira-lite/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

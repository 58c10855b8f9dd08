// Command polymind sends one prompt to several LLM backends at once and
// prints their answers side by side.
package main

import (
	"fmt"
	"os"

	"github.com/sasanktumpati/polymind/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

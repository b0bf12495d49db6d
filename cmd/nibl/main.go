// Command nibl is a quiet static site generator for interactive fiction.
package main

import (
	"os"

	"github.com/verkaro/nibl/cmd/nibl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/unicef-drp/Ahead-of-the-Storm/cmd/aos-mcp/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

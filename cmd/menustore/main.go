// Command menustore inspects and maintains persisted menu definitions.
package main

import (
	"os"

	"github.com/menukit/menustore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/Zuehlke/kwiz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

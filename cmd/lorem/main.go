package main

import (
	"os"

	"github.com/emmetio/lorem/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

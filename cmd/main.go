package main

import (
	"os"

	"github.com/htlin222/gkahoot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/dshills/snapreview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

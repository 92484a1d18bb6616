package main

import (
	"os"

	"github.com/rezmoss/sbomdiff/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

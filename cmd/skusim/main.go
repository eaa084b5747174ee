// Command skusim prints SKU growth projections from the command line.
package main

import (
	"os"

	"github.com/aristath/skusim/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args, os.Stdout, os.Stderr))
}

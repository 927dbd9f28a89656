// Command ccdb is the calibration constants database CLI.
package main

import (
	"os"

	"github.com/openccdb/ccdb/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

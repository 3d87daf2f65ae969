// Command eqcat manages a per-project equipment catalog.
package main

import (
	"os"

	"github.com/sekkipras/eqcat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

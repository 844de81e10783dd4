// Command flavrctl is the Flavr command line.
package main

import (
	"os"

	"github.com/pageza/flavr/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// Command docfill fills DOCX templates from JSON, YAML or XLSX data.
package main

import (
	"os"

	"github.com/benjaminschreck/go-docfill/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

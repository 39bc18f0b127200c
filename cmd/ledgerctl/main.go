// Command ledgerctl flattens accounting reports, extracts and merges
// transaction records, and runs bisected report queries.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

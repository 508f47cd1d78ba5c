// Command yieldctl operates a yield distribution and conversion engine
// stored in a local data directory.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Command desigo inspects the products of a spectroscopic data release:
// coadded spectra, redshift catalogs and best-fit template models.
package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd := newRootCommand(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "desigo:", err)
		os.Exit(1)
	}
}

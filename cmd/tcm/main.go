// Command tcm is the command-line client for the test-case manager. It
// imports CSV and Excel files through the REST API, downloads exports and
// the import template, and prints catalogs and dashboard statistics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

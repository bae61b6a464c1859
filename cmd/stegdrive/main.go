// Package main provides the stegdrive CLI tool for storing files in a
// remote object store as plain text documents.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

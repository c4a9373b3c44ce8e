// Package main provides the entry point for the srcfind CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/srcfind/cmd/srcfind/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var invalid *invalidSQLError
		if !errors.As(err, &invalid) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

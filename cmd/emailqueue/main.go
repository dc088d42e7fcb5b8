/*
Package main provides the CLI entry point for the email queue.
*/
package main

import (
	"os"

	"github.com/dmitrymomot/emailqueue/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

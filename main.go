// Package main provides the entrypoint for messaging-webhook-app.
package main

import (
	"os"

	"github.com/isometry/messaging-webhook-app/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}

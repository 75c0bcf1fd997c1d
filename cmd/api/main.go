package main

import (
	"os"
)

func main() {
	cmd := newServeCmd()
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

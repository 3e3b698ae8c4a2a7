package main

import (
	"os"

	"resolveup/cmd"
	"resolveup/internal/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Error("error: %v\n", err)
		os.Exit(1)
	}
}

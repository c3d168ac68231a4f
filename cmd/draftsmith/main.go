package main

import (
	"os"

	"draftsmith/cmd/handlers"
	"draftsmith/internal/logger"
)

func main() {
	logger.Init()
	if err := handlers.Execute(); err != nil {
		os.Exit(1)
	}
}

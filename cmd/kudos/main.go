package main

import (
	"os"

	"github.com/existflow/kudos/internal/cli"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// A local .env may carry KUDOS_* settings; it is optional
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

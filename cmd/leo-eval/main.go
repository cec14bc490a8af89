package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/stephaneavril/leo-medico/internal/cli"
)

func main() {
	// Optional .env for local runs; absence is fine
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

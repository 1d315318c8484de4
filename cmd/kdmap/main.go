package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/kdmap/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// KDMAP_* settings may come from a local .env file.
	_ = godotenv.Load(".env")

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

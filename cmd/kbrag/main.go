package main

import (
	"github.com/joho/godotenv"

	"kbrag/internal/cli"
)

func main() {
	// Optional .env for API keys; absence is not an error.
	godotenv.Load()

	cli.Execute()
}

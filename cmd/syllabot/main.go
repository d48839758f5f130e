package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env in the working directory; absence is fine.
	_ = godotenv.Load()

	Execute()
}

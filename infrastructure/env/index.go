package env

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a local .env file when one exists. In
// deployed environments the file is absent and the system environment
// is used as-is.
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("no .env file found. using system environment variables")
	}
}

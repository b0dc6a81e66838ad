package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFile loads environment variables from .env and .env.local, in that
// order. Variables already present in the process environment win.
func loadEnvFile() error {
	var found []string
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			found = append(found, envPath)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("no .env file found")
	}
	if err := godotenv.Load(found...); err != nil {
		return fmt.Errorf("load %v: %w", found, err)
	}
	fmt.Fprintf(os.Stderr, "Loaded environment variables from %v\n", found)
	return nil
}

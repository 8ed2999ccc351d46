package config

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first one present wins.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads KEY=VALUE pairs from the first existing env file.
// Variables already present in the process environment are not overwritten.
// Returns fs.ErrNotExist when no file is present.
func loadEnvFile() error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("no env file found: %w", fs.ErrNotExist)
}

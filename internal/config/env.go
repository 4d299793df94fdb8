package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultPath is used when neither -config nor NEONFLOW_CONFIG is set.
const DefaultPath = "neonflow.toml"

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// PathFromEnv is the default for the -config flag of both binaries.
func PathFromEnv() string {
	if p := os.Getenv("NEONFLOW_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

package utils

import "os"

// GetEnv returns the environment variable value or fallback if unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

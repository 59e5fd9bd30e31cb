package envutil

import "os"

// Get retrieves an environment variable with automatic SHIBGATE_ prefix fallback.
// It checks for the environment variable in this order:
// 1. Exact key as provided
// 2. Key with SHIBGATE_ prefix
// 3. Returns fallback if neither exists
//
// This supports both container-style (SHIBGATE_ prefixed) and local dev
// (unprefixed) configurations.
func Get(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	if len(key) < 9 || key[:9] != "SHIBGATE_" {
		if value, exists := os.LookupEnv("SHIBGATE_" + key); exists {
			return value
		}
	}

	return fallback
}

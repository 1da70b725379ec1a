package util

import (
	"os"
	"strconv"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// DefaultOutputDir returns the report directory used when -o is not
// given: PROCDIFF_OUTPUT if set, otherwise the current directory.
func DefaultOutputDir() string {
	return GetEnvWithDefault("PROCDIFF_OUTPUT", ".")
}

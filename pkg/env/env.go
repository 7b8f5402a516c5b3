package env

import (
	"os"
	"strings"
)

// Get reads an environment variable, falling back when it is unset or
// blank.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		return fallback
	}
	return val
}

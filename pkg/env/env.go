package env

import (
	"os"
	"strconv"
	"strings"
)

// Prefix namespaces every process-level variable read outside envconfig.
const Prefix = "PRICECOMPARE_"

// Get returns PRICECOMPARE_<key>, then the bare key, then fallback.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}

// Bool parses Get(key) as a boolean, returning fallback on unset or garbage.
func Bool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

package instance

import (
	"os"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/env"
)

// GetID identifies this process when it holds shared locks.
// PRICECOMPARE_INSTANCE_ID wins, then the hostname.
func GetID() string {
	if id := env.Get("INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}

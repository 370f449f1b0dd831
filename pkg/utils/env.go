package utils

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt parses the variable as an integer, falling back when it is unset or malformed.
func GetenvInt(key string, fallback int) int {
	value := Getenv(key, "")
	if value == "" {
		return fallback
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		LogWarn(err, "Ignoring malformed integer environment variable", map[string]interface{}{"key": key})
		return fallback
	}
	return n
}

// GetenvDuration accepts Go durations ("1500ms", "2s") and falls back on anything else.
func GetenvDuration(key string, fallback time.Duration) time.Duration {
	value := Getenv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		LogWarn(err, "Ignoring malformed duration environment variable", map[string]interface{}{"key": key})
		return fallback
	}
	return d
}

// GetenvBool treats "1", "t", "true" (any case) as true.
func GetenvBool(key string, fallback bool) bool {
	value := Getenv(key, "")
	if value == "" {
		return fallback
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return fallback
	}
	return b
}

// SplitList splits a comma separated value, dropping empty entries.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

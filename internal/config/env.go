// Package config provides environment helpers for aperture-tune commands.
package config

import (
	"os"
	"strconv"
)

// Default web viewer configuration.
const (
	DefaultWebPort = "8088"
)

// WebPort returns the listen port for the web viewer from the PORT env
// var. Falls back to the default if not set or not a valid port number.
func WebPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		return DefaultWebPort
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return DefaultWebPort
	}
	return port
}

// LogLevel returns the log level from the LOG_LEVEL env var.
// Falls back to "info" if not set.
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// Package watchtower locates camera stream resources on a Watchtower
// video service and holds the fixed acquisition parameters of a run.
package watchtower

import (
	"fmt"
	"strings"
)

// Service defaults. Watchtower listens on localhost with a self-signed
// certificate, so TLS verification is skipped by default.
const (
	DefaultBaseURL        = "https://localhost:4343"
	DefaultStreamFPS      = 15
	DefaultRegionFraction = 0.2
)

// Config holds the parameters shared by every component of a run.
// Values are fixed at startup and never change for the process lifetime.
type Config struct {
	// BaseURL is the Watchtower service endpoint.
	BaseURL string

	// StreamFPS is the frame rate requested from each camera stream.
	StreamFPS int

	// RegionFraction is the fraction of frame height and width covered
	// by the analyzed center region, in (0, 1].
	RegionFraction float64

	// InsecureTLS skips certificate verification when opening streams.
	InsecureTLS bool
}

// DefaultConfig returns the standard configuration for a local
// Watchtower install.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		StreamFPS:      DefaultStreamFPS,
		RegionFraction: DefaultRegionFraction,
		InsecureTLS:    true,
	}
}

// Validate checks that the config values are usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.StreamFPS < 1 {
		return fmt.Errorf("stream fps must be positive, got %d", c.StreamFPS)
	}
	if c.RegionFraction <= 0 || c.RegionFraction > 1 {
		return fmt.Errorf("region fraction must be in (0, 1], got %g", c.RegionFraction)
	}
	return nil
}

// StreamURL returns the live MJPEG stream address for a camera serial.
// String formatting only; the serial is treated as opaque.
func (c Config) StreamURL(serial string) string {
	return fmt.Sprintf("%s/cameras/%s/stream?fps=%d",
		strings.TrimRight(c.BaseURL, "/"), serial, c.StreamFPS)
}

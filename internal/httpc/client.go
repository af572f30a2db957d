// Package httpc builds the HTTP client used for camera stream reads.
// Use it instead of http.DefaultClient to ensure connection setup is
// bounded.
package httpc

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// NewStreamingClient creates an HTTP client for long-lived stream reads.
// It bounds connection setup but sets no overall response timeout: an
// MJPEG body is open-ended and an idle deadline would kill a healthy
// stream. insecure skips TLS certificate verification, which is required
// for the Watchtower service's self-signed localhost certificate.
func NewStreamingClient(insecure bool) *http.Client {
	return &http.Client{
		Transport: newTransport(insecure),
	}
}

func newTransport(insecure bool) *http.Transport {
	t := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   DefaultConnectTimeout,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}

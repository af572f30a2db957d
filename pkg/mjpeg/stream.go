// Package mjpeg reads frames from an HTTP MJPEG stream
// (multipart/x-mixed-replace with one JPEG image per part).
package mjpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
)

const mjpegMediaType = "multipart/x-mixed-replace"

// ErrStreamEnded reports that an open stream stopped yielding frames.
// A closed feed, a dropped connection and a garbled part all fold into
// this error; the caller treats them identically.
var ErrStreamEnded = errors.New("mjpeg: stream ended")

// Stream is a single live MJPEG connection. It is not safe for
// concurrent use; one ReadFrame call yields at most one frame.
type Stream struct {
	url    string
	resp   *http.Response
	reader *multipart.Reader
	closed bool
}

// Open connects to an MJPEG stream and negotiates the multipart
// boundary. The caller must Close the returned stream exactly once.
func Open(ctx context.Context, client *http.Client, url string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("mjpeg: build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", mjpegMediaType)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mjpeg: connect to %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("mjpeg: %s returned %s", url, resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != mjpegMediaType || params["boundary"] == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("mjpeg: %s is not an MJPEG stream (Content-Type %q)",
			url, resp.Header.Get("Content-Type"))
	}

	return &Stream{
		url:    url,
		resp:   resp,
		reader: multipart.NewReader(resp.Body, params["boundary"]),
	}, nil
}

// ReadFrame blocks until the next frame arrives and returns its JPEG
// bytes. Any failure, including a clean end of stream, satisfies
// errors.Is(err, ErrStreamEnded).
func (s *Stream) ReadFrame() ([]byte, error) {
	if s.closed {
		return nil, ErrStreamEnded
	}

	part, err := s.reader.NextPart()
	if err != nil {
		if err == io.EOF {
			return nil, ErrStreamEnded
		}
		return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStreamEnded, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty part", ErrStreamEnded)
	}
	return data, nil
}

// URL returns the stream address this connection was opened with.
func (s *Stream) URL() string {
	return s.url
}

// Close releases the underlying connection. Safe to call more than
// once; the body is closed exactly once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Body.Close()
}

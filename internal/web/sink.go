package web

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/watchtower-tools/aperture-tune/pkg/session"
)

// Sink renders composite frames into the server instead of a native
// window. It never reports quit; a web run stops via context
// cancellation or a stream failure.
type Sink struct {
	server *Server
}

// NewSink creates a sink publishing into srv.
func NewSink(srv *Server) *Sink {
	return &Sink{server: srv}
}

// Present encodes the composite to JPEG for the MJPEG endpoint and
// broadcasts the two intensity readings to websocket viewers.
func (s *Sink) Present(f session.Frame) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.Image)
	if err != nil {
		return fmt.Errorf("encode composite frame: %w", err)
	}
	defer buf.Close()

	s.server.frames.put(buf.GetBytes())
	s.server.intensityHub.BroadcastJSON(map[string]any{
		"type":       "intensity",
		"reference":  f.Reference,
		"adjustment": f.Adjustment,
	})
	return nil
}

// Close stops the frame feed; connected stream handlers unblock.
func (s *Sink) Close() error {
	s.server.frames.close()
	return nil
}

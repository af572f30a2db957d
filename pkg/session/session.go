// Package session drives the acquisition/display loop: read one frame
// from each camera, measure center brightness, annotate, composite and
// present, until the user quits or a stream fails.
package session

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/watchtower-tools/aperture-tune/internal/log"
	"github.com/watchtower-tools/aperture-tune/pkg/compose"
	"github.com/watchtower-tools/aperture-tune/pkg/luminance"
	"github.com/watchtower-tools/aperture-tune/pkg/overlay"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateInitializing State = iota
	StateStreaming
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ErrQuit is returned by a Sink's Present when the user asked to stop.
var ErrQuit = errors.New("session: quit requested")

// OpenError reports that a camera feed could not be opened. The run
// never starts streaming when it occurs.
type OpenError struct {
	Serial string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open stream for camera %s: %v", e.Serial, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// FrameSource yields sequential JPEG frames from a live feed.
type FrameSource interface {
	ReadFrame() ([]byte, error)
	Close() error
}

// OpenFunc opens the live feed for one camera.
type OpenFunc func(ctx context.Context) (FrameSource, error)

// Camera names one physical camera and knows how to open its feed.
type Camera struct {
	Serial string
	Label  string
	Open   OpenFunc
}

// Reading is one camera's brightness measurement for the current frame.
type Reading struct {
	Serial    string  `json:"serial"`
	Intensity float64 `json:"intensity"`
}

// Frame is one composite display frame together with the measurements
// it was built from. Image is owned by the session and valid only for
// the duration of the Present call.
type Frame struct {
	Image      gocv.Mat
	Reference  Reading
	Adjustment Reading
}

// Sink renders composite frames and polls for a user quit signal.
type Sink interface {
	// Present renders one frame. Returns ErrQuit when the user asked
	// to stop.
	Present(Frame) error
	Close() error
}

// Session owns both camera feeds and the sink for one run.
type Session struct {
	ref      Camera
	adj      Camera
	sink     Sink
	fraction float64
	state    State
}

// New creates a session in the initializing state. fraction is the
// analyzed center region fraction in (0, 1].
func New(ref, adj Camera, sink Sink, fraction float64) *Session {
	return &Session{
		ref:      ref,
		adj:      adj,
		sink:     sink,
		fraction: fraction,
		state:    StateInitializing,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Run executes the whole lifecycle. It opens both feeds (an *OpenError
// means streaming never started), then loops until the sink reports
// quit, the context is canceled, or a read fails. Both feeds and the
// sink are released exactly once on every exit path.
//
// The return is nil for a user quit or cancellation and the terminal
// error otherwise.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		s.state = StateTerminated
		if err := s.sink.Close(); err != nil {
			log.Warn("closing sink", "error", err)
		}
	}()

	log.Info("opening reference camera stream", "camera", s.ref.Serial)
	refSrc, err := s.ref.Open(ctx)
	if err != nil {
		return &OpenError{Serial: s.ref.Serial, Err: err}
	}
	defer refSrc.Close()

	log.Info("opening adjustment camera stream", "camera", s.adj.Serial)
	adjSrc, err := s.adj.Open(ctx)
	if err != nil {
		return &OpenError{Serial: s.adj.Serial, Err: err}
	}
	defer adjSrc.Close()

	s.state = StateStreaming
	log.Info("streams open",
		"reference", s.ref.Serial, "adjustment", s.adj.Serial)

	for {
		if ctx.Err() != nil {
			return nil
		}
		err := s.step(refSrc, adjSrc)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			// Cancellation kills the in-flight body read, so a failed
			// step under a canceled context is a requested stop, not a
			// stream failure.
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// step runs one loop iteration. Every Mat it creates is released
// before it returns; no frame survives across iterations.
func (s *Session) step(refSrc, adjSrc FrameSource) error {
	refJPEG, err := refSrc.ReadFrame()
	if err != nil {
		return fmt.Errorf("camera %s: %w", s.ref.Serial, err)
	}
	adjJPEG, err := adjSrc.ReadFrame()
	if err != nil {
		return fmt.Errorf("camera %s: %w", s.adj.Serial, err)
	}

	refMat, err := decodeFrame(refJPEG, s.ref.Serial)
	if err != nil {
		return err
	}
	defer refMat.Close()
	adjMat, err := decodeFrame(adjJPEG, s.adj.Serial)
	if err != nil {
		return err
	}
	defer adjMat.Close()

	refReading := s.measure(refMat, s.ref.Serial)
	adjReading := s.measure(adjMat, s.adj.Serial)

	refDisplay := overlay.Annotate(refMat, refReading.Intensity, s.ref.Label, s.fraction)
	defer refDisplay.Close()
	adjDisplay := overlay.Annotate(adjMat, adjReading.Intensity, s.adj.Label, s.fraction)
	defer adjDisplay.Close()

	combined, err := compose.SideBySide(refDisplay, adjDisplay)
	if err != nil {
		return fmt.Errorf("compose display frame: %w", err)
	}
	defer combined.Close()

	return s.sink.Present(Frame{
		Image:      combined,
		Reference:  refReading,
		Adjustment: adjReading,
	})
}

func (s *Session) measure(img gocv.Mat, serial string) Reading {
	region := luminance.CenterRegion(img.Cols(), img.Rows(), s.fraction)
	return Reading{
		Serial:    serial,
		Intensity: luminance.MeanIntensity(img, region),
	}
}

func decodeFrame(data []byte, serial string) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("camera %s: decode frame: %w", serial, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("camera %s: decode frame: empty image", serial)
	}
	return img, nil
}

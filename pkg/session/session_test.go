package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"testing"
)

// testJPEG encodes a uniform gray frame the way a camera part would
// arrive off the wire.
func testJPEG(t *testing.T, w, h int, gray uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: gray, G: gray, B: gray, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return buf.Bytes()
}

func repeat(frame []byte, n int) [][]byte {
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = frame
	}
	return frames
}

type stubSource struct {
	frames  [][]byte
	next    int
	closes  int
	readErr error
}

func (s *stubSource) ReadFrame() ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.next >= len(s.frames) {
		return nil, errors.New("feed closed")
	}
	frame := s.frames[s.next]
	s.next++
	return frame, nil
}

func (s *stubSource) Close() error {
	s.closes++
	return nil
}

func opener(src FrameSource) OpenFunc {
	return func(context.Context) (FrameSource, error) {
		return src, nil
	}
}

type captureSink struct {
	quitAfter int
	presented int
	closes    int

	lastWidth  int
	lastHeight int
	lastRef    Reading
	lastAdj    Reading
}

func (s *captureSink) Present(f Frame) error {
	s.presented++
	s.lastWidth = f.Image.Cols()
	s.lastHeight = f.Image.Rows()
	s.lastRef = f.Reference
	s.lastAdj = f.Adjustment
	if s.presented >= s.quitAfter {
		return ErrQuit
	}
	return nil
}

func (s *captureSink) Close() error {
	s.closes++
	return nil
}

func TestRunRendersUntilQuit(t *testing.T) {
	refSrc := &stubSource{frames: repeat(testJPEG(t, 64, 48, 100), 10)}
	adjSrc := &stubSource{frames: repeat(testJPEG(t, 64, 48, 180), 10)}
	sink := &captureSink{quitAfter: 3}

	sess := New(
		Camera{Serial: "CAM1", Label: "Reference: CAM1", Open: opener(refSrc)},
		Camera{Serial: "CAM2", Label: "Adjust: CAM2", Open: opener(adjSrc)},
		sink, 0.2,
	)

	if err := sess.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v, want nil for user quit", err)
	}

	if sink.presented != 3 {
		t.Errorf("rendered %d composites, want 3", sink.presented)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want terminated", sess.State())
	}
	if refSrc.closes != 1 || adjSrc.closes != 1 {
		t.Errorf("source closes = %d/%d, want 1/1", refSrc.closes, adjSrc.closes)
	}
	if sink.closes != 1 {
		t.Errorf("sink closes = %d, want 1", sink.closes)
	}

	// Composite width is the sum of the two equal-height frames
	if sink.lastWidth != 128 || sink.lastHeight != 48 {
		t.Errorf("composite = %dx%d, want 128x48", sink.lastWidth, sink.lastHeight)
	}

	if sink.lastRef.Serial != "CAM1" || sink.lastAdj.Serial != "CAM2" {
		t.Errorf("readings carry serials %q/%q, want CAM1/CAM2",
			sink.lastRef.Serial, sink.lastAdj.Serial)
	}
	if math.Abs(sink.lastRef.Intensity-100) > 2 {
		t.Errorf("reference intensity = %g, want ~100", sink.lastRef.Intensity)
	}
	if math.Abs(sink.lastAdj.Intensity-180) > 2 {
		t.Errorf("adjustment intensity = %g, want ~180", sink.lastAdj.Intensity)
	}
}

func TestRunReferenceOpenFailure(t *testing.T) {
	adjOpened := false
	sink := &captureSink{quitAfter: 100}

	sess := New(
		Camera{Serial: "CAM1", Open: func(context.Context) (FrameSource, error) {
			return nil, errors.New("connection refused")
		}},
		Camera{Serial: "CAM2", Open: func(context.Context) (FrameSource, error) {
			adjOpened = true
			return &stubSource{}, nil
		}},
		sink, 0.2,
	)

	err := sess.Run(context.Background())
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("Run returned %v, want *OpenError", err)
	}
	if openErr.Serial != "CAM1" {
		t.Errorf("OpenError.Serial = %q, want CAM1", openErr.Serial)
	}
	if adjOpened {
		t.Error("adjustment stream was opened after reference open failed")
	}
	if sink.presented != 0 {
		t.Errorf("rendered %d composites after open failure, want 0", sink.presented)
	}
	if sink.closes != 1 {
		t.Errorf("sink closes = %d, want 1", sink.closes)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want terminated", sess.State())
	}
}

func TestRunAdjustmentOpenFailureReleasesReference(t *testing.T) {
	refSrc := &stubSource{frames: repeat(testJPEG(t, 32, 32, 50), 2)}
	sink := &captureSink{quitAfter: 100}

	sess := New(
		Camera{Serial: "CAM1", Open: opener(refSrc)},
		Camera{Serial: "CAM2", Open: func(context.Context) (FrameSource, error) {
			return nil, errors.New("no such camera")
		}},
		sink, 0.2,
	)

	err := sess.Run(context.Background())
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("Run returned %v, want *OpenError", err)
	}
	if openErr.Serial != "CAM2" {
		t.Errorf("OpenError.Serial = %q, want CAM2", openErr.Serial)
	}
	if refSrc.closes != 1 {
		t.Errorf("reference source closes = %d, want 1", refSrc.closes)
	}
	if refSrc.next != 0 {
		t.Errorf("read %d frames before streaming, want 0", refSrc.next)
	}
}

func TestRunReadFailureIsTerminal(t *testing.T) {
	refSrc := &stubSource{readErr: errors.New("connection reset")}
	adjSrc := &stubSource{frames: repeat(testJPEG(t, 32, 32, 50), 5)}
	sink := &captureSink{quitAfter: 100}

	sess := New(
		Camera{Serial: "CAM1", Open: opener(refSrc)},
		Camera{Serial: "CAM2", Open: opener(adjSrc)},
		sink, 0.2,
	)

	err := sess.Run(context.Background())
	if err == nil {
		t.Fatal("Run returned nil, want read failure")
	}
	var openErr *OpenError
	if errors.As(err, &openErr) {
		t.Fatalf("read failure reported as OpenError: %v", err)
	}
	if sink.presented != 0 {
		t.Errorf("rendered %d composites, want 0", sink.presented)
	}
	if refSrc.closes != 1 || adjSrc.closes != 1 || sink.closes != 1 {
		t.Errorf("closes = %d/%d/%d, want 1/1/1",
			refSrc.closes, adjSrc.closes, sink.closes)
	}
}

// blockingSource parks in ReadFrame until the context is canceled,
// then fails the way a stream read fails when its connection is torn
// down underneath it.
type blockingSource struct {
	stubSource
	ctx     context.Context
	reading chan struct{}
}

func (s *blockingSource) ReadFrame() ([]byte, error) {
	if s.next < len(s.frames) {
		return s.stubSource.ReadFrame()
	}
	close(s.reading)
	<-s.ctx.Done()
	return nil, errors.New("stream ended: context canceled")
}

func TestRunCancelDuringRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frame := testJPEG(t, 32, 32, 50)
	refSrc := &blockingSource{
		stubSource: stubSource{frames: repeat(frame, 1)},
		ctx:        ctx,
		reading:    make(chan struct{}),
	}
	adjSrc := &stubSource{frames: repeat(frame, 5)}
	sink := &captureSink{quitAfter: 100}

	sess := New(
		Camera{Serial: "CAM1", Open: opener(refSrc)},
		Camera{Serial: "CAM2", Open: opener(adjSrc)},
		sink, 0.2,
	)

	go func() {
		<-refSrc.reading
		cancel()
	}()

	if err := sess.Run(ctx); err != nil {
		t.Fatalf("Run canceled mid-read returned %v, want nil", err)
	}
	if sink.presented != 1 {
		t.Errorf("rendered %d composites, want 1", sink.presented)
	}
	if refSrc.closes != 1 || adjSrc.closes != 1 || sink.closes != 1 {
		t.Errorf("closes = %d/%d/%d, want 1/1/1",
			refSrc.closes, adjSrc.closes, sink.closes)
	}
	if sess.State() != StateTerminated {
		t.Errorf("state = %v, want terminated", sess.State())
	}
}

func TestRunCanceledContext(t *testing.T) {
	refSrc := &stubSource{frames: repeat(testJPEG(t, 32, 32, 50), 5)}
	adjSrc := &stubSource{frames: repeat(testJPEG(t, 32, 32, 50), 5)}
	sink := &captureSink{quitAfter: 100}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := New(
		Camera{Serial: "CAM1", Open: opener(refSrc)},
		Camera{Serial: "CAM2", Open: opener(adjSrc)},
		sink, 0.2,
	)

	if err := sess.Run(ctx); err != nil {
		t.Fatalf("Run with canceled context returned %v, want nil", err)
	}
	if sink.presented != 0 {
		t.Errorf("rendered %d composites, want 0", sink.presented)
	}
	if refSrc.closes != 1 || adjSrc.closes != 1 {
		t.Errorf("source closes = %d/%d, want 1/1", refSrc.closes, adjSrc.closes)
	}
}

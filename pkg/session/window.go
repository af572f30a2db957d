package session

import (
	"gocv.io/x/gocv"
)

const quitKey = 'q'

// isQuitKey reports whether a WaitKey return code is the quit key.
// GUI backends may set modifier and layout bits above the low byte.
func isQuitKey(code int) bool {
	return code&0xff == quitKey
}

// WindowSink renders composite frames into a native OpenCV window and
// maps the q keypress to a quit signal.
type WindowSink struct {
	window *gocv.Window
}

// NewWindowSink opens a named display window.
func NewWindowSink(title string) *WindowSink {
	return &WindowSink{window: gocv.NewWindow(title)}
}

// Present shows the frame and polls the keyboard with a bounded wait.
func (w *WindowSink) Present(f Frame) error {
	w.window.IMShow(f.Image)
	if isQuitKey(w.window.WaitKey(1)) {
		return ErrQuit
	}
	return nil
}

// Close destroys the window.
func (w *WindowSink) Close() error {
	return w.window.Close()
}

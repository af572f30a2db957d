// Package overlay draws the aperture-matching annotations onto a frame.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/watchtower-tools/aperture-tune/pkg/luminance"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

// Annotate returns a copy of img with the camera label near the
// top-left, the formatted intensity near the bottom-left and the
// analyzed center region outlined. The input Mat is never modified;
// the caller owns the returned Mat and must Close it.
func Annotate(img gocv.Mat, intensity float64, label string, fraction float64) gocv.Mat {
	out := img.Clone()
	h := out.Rows()
	w := out.Cols()

	gocv.PutTextWithParams(&out, label, image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.8, white, 2, gocv.LineAA, false)

	text := fmt.Sprintf("Intensity: %.1f", intensity)
	gocv.PutTextWithParams(&out, text, image.Pt(10, h-20),
		gocv.FontHersheySimplex, 1.0, green, 2, gocv.LineAA, false)

	// Same geometry the analyzer computes for this frame
	gocv.Rectangle(&out, luminance.CenterRegion(w, h, fraction), green, 2)

	return out
}

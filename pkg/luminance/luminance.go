// Package luminance reduces the center region of a frame to a single
// mean brightness value.
package luminance

import (
	"image"

	"gocv.io/x/gocv"
)

// CenterRegion returns the centered sub-rectangle covering the given
// fraction of a frame's width and height. Dimensions truncate toward
// zero and offsets split the remainder evenly, so the analysis and the
// overlay rectangle land on identical pixels for the same inputs.
func CenterRegion(width, height int, fraction float64) image.Rectangle {
	regionW := int(float64(width) * fraction)
	regionH := int(float64(height) * fraction)
	x0 := (width - regionW) / 2
	y0 := (height - regionH) / 2
	return image.Rect(x0, y0, x0+regionW, y0+regionH)
}

// MeanIntensity converts the region of img to grayscale and returns the
// arithmetic mean of its samples. Single-channel input is averaged
// as-is. An empty region or image yields 0 rather than a crash on
// degenerate frames.
func MeanIntensity(img gocv.Mat, region image.Rectangle) float64 {
	if img.Empty() || region.Dx() < 1 || region.Dy() < 1 {
		return 0
	}

	roi := img.Region(region)
	defer roi.Close()

	if roi.Channels() == 1 {
		return roi.Mean().Val1
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)
	return gray.Mean().Val1
}

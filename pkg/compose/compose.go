// Package compose joins two frames into one side-by-side display frame.
package compose

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame reports a zero-sized input frame.
var ErrEmptyFrame = errors.New("compose: empty input frame")

// SideBySide concatenates a and b left-to-right. Frames of equal height
// concatenate directly; otherwise both are rescaled (preserving aspect
// ratio) to the smaller height first, so the result always has height
// min(heightA, heightB). The caller owns the returned Mat.
func SideBySide(a, b gocv.Mat) (gocv.Mat, error) {
	if a.Empty() || b.Empty() {
		return gocv.Mat{}, ErrEmptyFrame
	}

	dst := gocv.NewMat()
	if a.Rows() == b.Rows() {
		gocv.Hconcat(a, b, &dst)
		return dst, nil
	}

	target := a.Rows()
	if b.Rows() < target {
		target = b.Rows()
	}

	left := scaleToHeight(a, target)
	defer left.Close()
	right := scaleToHeight(b, target)
	defer right.Close()

	gocv.Hconcat(left, right, &dst)
	return dst, nil
}

func scaleToHeight(src gocv.Mat, height int) gocv.Mat {
	width := src.Cols() * height / src.Rows()
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst
}

package compose

import (
	"errors"
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func solidMat(rows, cols int, value float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0),
		rows, cols, gocv.MatTypeCV8UC3)
}

func TestSideBySideEqualHeights(t *testing.T) {
	a := solidMat(40, 50, 10)
	defer a.Close()
	b := solidMat(40, 70, 200)
	defer b.Close()

	got, err := SideBySide(a, b)
	if err != nil {
		t.Fatalf("SideBySide failed: %v", err)
	}
	defer got.Close()

	if got.Rows() != 40 {
		t.Errorf("height = %d, want 40", got.Rows())
	}
	if got.Cols() != 120 {
		t.Errorf("width = %d, want 120", got.Cols())
	}

	// Left portion carries a's pixels, right portion b's
	left := got.Region(image.Rect(0, 0, 50, 40))
	defer left.Close()
	right := got.Region(image.Rect(50, 0, 120, 40))
	defer right.Close()

	if mean := left.Mean().Val1; mean != 10 {
		t.Errorf("left mean = %g, want 10", mean)
	}
	if mean := right.Mean().Val1; mean != 200 {
		t.Errorf("right mean = %g, want 200", mean)
	}
}

func TestSideBySideDifferentHeights(t *testing.T) {
	a := solidMat(100, 80, 64)
	defer a.Close()
	b := solidMat(50, 60, 128)
	defer b.Close()

	got, err := SideBySide(a, b)
	if err != nil {
		t.Fatalf("SideBySide failed: %v", err)
	}
	defer got.Close()

	if got.Rows() != 50 {
		t.Errorf("height = %d, want min height 50", got.Rows())
	}

	// a rescales to 80*50/100 = 40 wide; b keeps its 60
	if got.Cols() != 100 {
		t.Errorf("width = %d, want 100", got.Cols())
	}

	// Rescaling a solid frame must not change its brightness
	left := got.Region(image.Rect(0, 0, 40, 50))
	defer left.Close()
	if mean := left.Mean().Val1; math.Abs(mean-64) > 1 {
		t.Errorf("rescaled left mean = %g, want 64", mean)
	}
}

func TestSideBySideEmptyInput(t *testing.T) {
	a := solidMat(10, 10, 1)
	defer a.Close()
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := SideBySide(a, empty); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("SideBySide(a, empty) error = %v, want ErrEmptyFrame", err)
	}
	if _, err := SideBySide(empty, a); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("SideBySide(empty, a) error = %v, want ErrEmptyFrame", err)
	}
}

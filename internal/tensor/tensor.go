// Package tensor provides the dense image tensor the smoothing pipeline
// operates on: a row-major (height, width, channels) block of float64
// samples. Decoded images are normalized to [0, 1] before they enter a
// tensor; the optimizer keeps them in that range.
package tensor

import (
	"errors"
	"fmt"
)

// ErrInvalidImage reports an image tensor whose shape cannot be processed:
// a missing dimension, a zero-length axis, or data that does not match the
// declared shape.
var ErrInvalidImage = errors.New("tensor: invalid image")

// Dense is a dense image tensor. Data is laid out row-major with the
// channel axis innermost: index (y, x, c) maps to (y*W+x)*C + c.
type Dense struct {
	H, W, C int
	Data    []float64
}

// NewDense allocates a zero-filled tensor of the given shape.
func NewDense(h, w, c int) (*Dense, error) {
	if h <= 0 || w <= 0 || c <= 0 {
		return nil, fmt.Errorf("%w: shape (%d, %d, %d)", ErrInvalidImage, h, w, c)
	}
	return &Dense{H: h, W: w, C: c, Data: make([]float64, h*w*c)}, nil
}

// Validate checks that d is a well-formed 3D tensor with non-zero axes and
// consistent backing storage.
func Validate(d *Dense) error {
	if d == nil {
		return fmt.Errorf("%w: nil tensor", ErrInvalidImage)
	}
	if d.H <= 0 || d.W <= 0 || d.C <= 0 {
		return fmt.Errorf("%w: shape (%d, %d, %d)", ErrInvalidImage, d.H, d.W, d.C)
	}
	if len(d.Data) != d.H*d.W*d.C {
		return fmt.Errorf("%w: data length %d does not match shape (%d, %d, %d)",
			ErrInvalidImage, len(d.Data), d.H, d.W, d.C)
	}
	return nil
}

// At returns the sample at (y, x, c). Bounds are not checked.
func (d *Dense) At(y, x, c int) float64 {
	return d.Data[(y*d.W+x)*d.C+c]
}

// Set stores a sample at (y, x, c). Bounds are not checked.
func (d *Dense) Set(y, x, c int, v float64) {
	d.Data[(y*d.W+x)*d.C+c] = v
}

// Clone returns a deep copy of d.
func (d *Dense) Clone() *Dense {
	data := make([]float64, len(d.Data))
	copy(data, d.Data)
	return &Dense{H: d.H, W: d.W, C: d.C, Data: data}
}

// SameShape reports whether d and other have identical dimensions.
func (d *Dense) SameShape(other *Dense) bool {
	return d.H == other.H && d.W == other.W && d.C == other.C
}

// Fill sets every sample to v.
func (d *Dense) Fill(v float64) {
	for i := range d.Data {
		d.Data[i] = v
	}
}

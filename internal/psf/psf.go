// Package psf converts the two forward-difference point-spread functions
// used by L0 smoothing into optical transfer functions.
//
// The conversion follows the classic psf2otf recipe: embed the kernel taps
// in a zero plane of the image shape, circularly shift each axis by
// -floor(kernel_axis_len/2) so the kernel reference tap lands at the
// origin, then take the 2D FFT. Circular convolution by the kernel in the
// spatial domain is then pointwise multiplication by the OTF in the
// frequency domain.
package psf

import (
	"errors"
	"fmt"

	"l0-obliterator/internal/fft"
)

// ErrInvalidKernelShape reports a kernel that is not one of the two
// supported forward-difference shapes, (1, 2) or (2, 1).
var ErrInvalidKernelShape = errors.New("psf: invalid kernel shape")

// Kernel is a small point-spread function stored row-major.
type Kernel struct {
	Rows, Cols int
	Taps       []float64
}

// The two derivative kernels of the smoothing objective: forward horizontal
// difference and forward vertical difference, both with circular wrap.
var (
	HorizontalDiff = Kernel{Rows: 1, Cols: 2, Taps: []float64{1, -1}}
	VerticalDiff   = Kernel{Rows: 2, Cols: 1, Taps: []float64{1, -1}}
)

// ToOTF computes the optical transfer function of k for a plane of the
// plan's shape. The result is a row-major complex plane of length H*W.
// Only the (1, 2) and (2, 1) difference kernels are accepted.
func ToOTF(k Kernel, plan *fft.Plan) ([]complex128, error) {
	supported := (k.Rows == 1 && k.Cols == 2) || (k.Rows == 2 && k.Cols == 1)
	if !supported {
		return nil, fmt.Errorf("%w: (%d, %d), want (1, 2) or (2, 1)", ErrInvalidKernelShape, k.Rows, k.Cols)
	}
	if len(k.Taps) != k.Rows*k.Cols {
		return nil, fmt.Errorf("%w: %d taps for shape (%d, %d)", ErrInvalidKernelShape, len(k.Taps), k.Rows, k.Cols)
	}

	h, w := plan.H(), plan.W()
	if h < k.Rows || w < k.Cols {
		return nil, fmt.Errorf("%w: kernel (%d, %d) larger than plane (%d, %d)", ErrInvalidKernelShape, k.Rows, k.Cols, h, w)
	}

	// Dense zero-pad with the circular shift folded into the embedding:
	// tap (r, c) lands at ((r - Rows/2) mod H, (c - Cols/2) mod W).
	padded := make([]complex128, h*w)
	shiftR := k.Rows / 2
	shiftC := k.Cols / 2
	for r := 0; r < k.Rows; r++ {
		for c := 0; c < k.Cols; c++ {
			rr := ((r-shiftR)%h + h) % h
			cc := ((c-shiftC)%w + w) % w
			padded[rr*w+cc] = complex(k.Taps[r*k.Cols+c], 0)
		}
	}

	otf := make([]complex128, h*w)
	plan.Forward(otf, padded)
	return otf, nil
}

// PowerSpectrum returns |otf[i]|^2 for every frequency bin.
func PowerSpectrum(otf []complex128) []float64 {
	out := make([]float64, len(otf))
	for i, v := range otf {
		re, im := real(v), imag(v)
		out[i] = re*re + im*im
	}
	return out
}

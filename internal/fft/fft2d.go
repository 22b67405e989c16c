// Package fft implements the 2D discrete Fourier transform and its inverse
// over row-major complex planes.
//
// The 2D transform is separable: a 1D FFT is applied to every row, then to
// every column of the row-transformed result. Both passes use gonum's
// complex FFT, which handles arbitrary (non power-of-two) lengths. The
// forward transform is unnormalized; the inverse divides by H*W so that
// Inverse(Forward(x)) == x.
package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds the per-axis FFT objects and scratch buffers for one plane
// shape. A Plan is not safe for concurrent use; create one per goroutine.
type Plan struct {
	h, w int
	row  *fourier.CmplxFFT
	col  *fourier.CmplxFFT

	rowBuf []complex128
	colIn  []complex128
	colOut []complex128
}

// NewPlan creates transform state for (h, w) planes.
func NewPlan(h, w int) *Plan {
	return &Plan{
		h:      h,
		w:      w,
		row:    fourier.NewCmplxFFT(w),
		col:    fourier.NewCmplxFFT(h),
		rowBuf: make([]complex128, w),
		colIn:  make([]complex128, h),
		colOut: make([]complex128, h),
	}
}

// H returns the plane height the plan was built for.
func (p *Plan) H() int { return p.h }

// W returns the plane width the plan was built for.
func (p *Plan) W() int { return p.w }

// Forward computes the 2D DFT of src into dst. Both slices must have
// length h*w; dst and src may be the same slice.
func (p *Plan) Forward(dst, src []complex128) {
	p.transform(dst, src, false)
}

// Inverse computes the inverse 2D DFT of src into dst, normalized by
// 1/(h*w). Both slices must have length h*w; dst and src may be the same
// slice.
func (p *Plan) Inverse(dst, src []complex128) {
	p.transform(dst, src, true)
	scale := complex(1/float64(p.h*p.w), 0)
	for i := range dst {
		dst[i] *= scale
	}
}

func (p *Plan) transform(dst, src []complex128, inverse bool) {
	if len(src) != p.h*p.w || len(dst) != p.h*p.w {
		panic("fft: plane length does not match plan shape")
	}

	// Row pass. Reading the source row completes before the destination
	// row is written, so dst may alias src.
	for y := 0; y < p.h; y++ {
		rowSrc := src[y*p.w : (y+1)*p.w]
		if inverse {
			p.row.Sequence(p.rowBuf, rowSrc)
		} else {
			p.row.Coefficients(p.rowBuf, rowSrc)
		}
		copy(dst[y*p.w:(y+1)*p.w], p.rowBuf)
	}

	// Column pass over the row-transformed plane.
	for x := 0; x < p.w; x++ {
		for y := 0; y < p.h; y++ {
			p.colIn[y] = dst[y*p.w+x]
		}
		if inverse {
			p.col.Sequence(p.colOut, p.colIn)
		} else {
			p.col.Coefficients(p.colOut, p.colIn)
		}
		for y := 0; y < p.h; y++ {
			dst[y*p.w+x] = p.colOut[y]
		}
	}
}

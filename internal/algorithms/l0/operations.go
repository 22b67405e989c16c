package l0

import (
	"math"

	"l0-obliterator/internal/tensor"
)

// forwardDiff fills dh and dv with the circular forward differences of s:
// dh(y, x) = s(y, x+1) - s(y, x) and dv(y, x) = s(y+1, x) - s(y, x), with
// the last column and row wrapping back to the first.
func forwardDiff(s, dh, dv *tensor.Dense) {
	h, w, c := s.H, s.W, s.C
	for y := 0; y < h; y++ {
		yn := y + 1
		if yn == h {
			yn = 0
		}
		for x := 0; x < w; x++ {
			xn := x + 1
			if xn == w {
				xn = 0
			}
			base := (y*w + x) * c
			right := (y*w + xn) * c
			down := (yn*w + x) * c
			for ch := 0; ch < c; ch++ {
				dh.Data[base+ch] = s.Data[right+ch] - s.Data[base+ch]
				dv.Data[base+ch] = s.Data[down+ch] - s.Data[base+ch]
			}
		}
	}
}

// thresholdGradients computes the channel-summed squared gradient magnitude
// per pixel into energy, then zeroes dh and dv across all channels wherever
// that energy falls below threshold. Hard threshold, not soft: surviving
// gradients are untouched.
func thresholdGradients(dh, dv *tensor.Dense, energy []float64, threshold float64) {
	n := dh.H * dh.W
	c := dh.C
	for i := 0; i < n; i++ {
		base := i * c
		sum := 0.0
		for ch := 0; ch < c; ch++ {
			sum += dh.Data[base+ch]*dh.Data[base+ch] + dv.Data[base+ch]*dv.Data[base+ch]
		}
		energy[i] = sum
	}
	for i := 0; i < n; i++ {
		if energy[i] < threshold {
			base := i * c
			for ch := 0; ch < c; ch++ {
				dh.Data[base+ch] = 0
				dv.Data[base+ch] = 0
			}
		}
	}
}

// divergence applies the adjoint (negative, reverse-direction) circular
// difference to the auxiliary fields:
// out(y, x) = dh(y, x-1) - dh(y, x) + dv(y-1, x) - dv(y, x), with column 0
// and row 0 wrapping to the last column and row.
func divergence(dh, dv, out *tensor.Dense) {
	h, w, c := dh.H, dh.W, dh.C
	for y := 0; y < h; y++ {
		yp := y - 1
		if yp < 0 {
			yp = h - 1
		}
		for x := 0; x < w; x++ {
			xp := x - 1
			if xp < 0 {
				xp = w - 1
			}
			base := (y*w + x) * c
			left := (y*w + xp) * c
			up := (yp*w + x) * c
			for ch := 0; ch < c; ch++ {
				out.Data[base+ch] = dh.Data[left+ch] - dh.Data[base+ch] +
					dv.Data[up+ch] - dv.Data[base+ch]
			}
		}
	}
}

// channelToComplex copies one channel of d into a complex plane with zero
// imaginary parts.
func channelToComplex(d *tensor.Dense, ch int, plane []complex128) {
	c := d.C
	for i := range plane {
		plane[i] = complex(d.Data[i*c+ch], 0)
	}
}

// firstNonFinite returns the index of the first NaN or Inf in data, or -1.
func firstNonFinite(data []float64) int {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

package l0

import (
	"math"
	"math/rand"
	"testing"

	"l0-obliterator/internal/tensor"
)

func TestForwardDiffWrapsCircularly(t *testing.T) {
	// 1x4 row: 1, 2, 4, 8. Forward differences 1, 2, 4 and wrap 1-8 = -7.
	s, _ := tensor.NewDense(1, 4, 1)
	copy(s.Data, []float64{1, 2, 4, 8})

	dh, _ := tensor.NewDense(1, 4, 1)
	dv, _ := tensor.NewDense(1, 4, 1)
	forwardDiff(s, dh, dv)

	wantH := []float64{1, 2, 4, -7}
	for i := range wantH {
		if dh.Data[i] != wantH[i] {
			t.Errorf("dh[%d] = %v, want %v", i, dh.Data[i], wantH[i])
		}
	}
	// Single row: the vertical difference wraps onto itself and vanishes.
	for i := range dv.Data {
		if dv.Data[i] != 0 {
			t.Errorf("dv[%d] = %v, want 0", i, dv.Data[i])
		}
	}
}

func TestThresholdSumsChannels(t *testing.T) {
	// One pixel, two channels: per-channel energy 0.09+0.09 = 0.18 clears a
	// 0.1 threshold even though each channel alone would not.
	dh, _ := tensor.NewDense(1, 1, 2)
	dv, _ := tensor.NewDense(1, 1, 2)
	dh.Data[0], dh.Data[1] = 0.3, 0.3

	energy := make([]float64, 1)
	thresholdGradients(dh, dv, energy, 0.1)

	if dh.Data[0] != 0.3 || dh.Data[1] != 0.3 {
		t.Errorf("channel-summed energy %v wrongly thresholded", energy[0])
	}

	// Raising the threshold above the summed energy zeroes every channel.
	thresholdGradients(dh, dv, energy, 0.2)
	if dh.Data[0] != 0 || dh.Data[1] != 0 {
		t.Error("gradient not zeroed across channels below threshold")
	}
}

// TestDivergenceLayout checks the adjoint construction at known
// positions: column 0 holds the wrap term h[:, W-1] - h[:, 0], later
// columns the negated forward difference of h.
func TestDivergenceLayout(t *testing.T) {
	dh, _ := tensor.NewDense(1, 3, 1)
	dv, _ := tensor.NewDense(1, 3, 1)
	copy(dh.Data, []float64{2, 5, 11})

	out, _ := tensor.NewDense(1, 3, 1)
	divergence(dh, dv, out)

	want := []float64{
		11 - 2, // wrap: h[W-1] - h[0]
		2 - 5,  // -(h[1] - h[0])
		5 - 11, // -(h[2] - h[1])
	}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out.Data[i], want[i])
		}
	}
}

// TestDivergenceIsAdjoint verifies <grad S, (h, v)> == <S, divergence(h, v)>
// on random fields, the defining property of the adjoint the image
// subproblem's right-hand side relies on.
func TestDivergenceIsAdjoint(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s, _ := tensor.NewDense(5, 4, 2)
	fh, _ := tensor.NewDense(5, 4, 2)
	fv, _ := tensor.NewDense(5, 4, 2)
	for i := range s.Data {
		s.Data[i] = rng.Float64()
		fh.Data[i] = rng.Float64()
		fv.Data[i] = rng.Float64()
	}

	dh, _ := tensor.NewDense(5, 4, 2)
	dv, _ := tensor.NewDense(5, 4, 2)
	forwardDiff(s, dh, dv)

	div, _ := tensor.NewDense(5, 4, 2)
	divergence(fh, fv, div)

	lhs := 0.0
	for i := range s.Data {
		lhs += dh.Data[i]*fh.Data[i] + dv.Data[i]*fv.Data[i]
	}
	rhs := 0.0
	for i := range s.Data {
		rhs += s.Data[i] * div.Data[i]
	}

	if math.Abs(lhs-rhs) > 1e-10 {
		t.Errorf("<grad S, F> = %v, <S, divergence F> = %v; adjoint identity violated", lhs, rhs)
	}
}

func TestFirstNonFinite(t *testing.T) {
	data := []float64{1, 2, 3}
	if i := firstNonFinite(data); i != -1 {
		t.Errorf("firstNonFinite(finite) = %d, want -1", i)
	}
	data[1] = math.Inf(-1)
	if i := firstNonFinite(data); i != 1 {
		t.Errorf("firstNonFinite = %d, want 1", i)
	}
}

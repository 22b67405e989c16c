// Package l0 implements L0 gradient-norm image smoothing by half-quadratic
// splitting (Xu et al., "Image Smoothing via L0 Gradient Minimization").
//
// The objective penalizes the count of non-zero image gradients instead of
// their magnitude, which flattens low-amplitude texture while keeping
// strong edges intact. The splitting introduces auxiliary gradient fields
// (h, v) and a penalty beta: each iteration solves the gradient subproblem
// by hard-thresholding the circular forward differences of S, then solves
// the image subproblem in the frequency domain where the circular
// difference operators diagonalize. Beta grows geometrically from 2*lambda
// by a factor kappa until it reaches betaMax, which is the sole termination
// rule.
package l0

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"l0-obliterator/internal/fft"
	"l0-obliterator/internal/psf"
	"l0-obliterator/internal/tensor"
)

const (
	DefaultLambda  = 2e-2
	DefaultKappa   = 2.0
	DefaultBetaMax = 1e5
)

// ErrNumericDegeneracy reports a non-finite sample produced by a frequency
// solve, typically from pathological input. The reference algorithm has no
// internal NaN/Inf guard, so degenerate values are surfaced rather than
// propagated silently.
var ErrNumericDegeneracy = errors.New("l0: non-finite sample after frequency solve")

// ProgressFunc is invoked after each completed iteration.
type ProgressFunc func(iteration, total int)

// Options configures a single smoothing run.
type Options struct {
	// Lambda weights gradient sparsity against fidelity. Smaller values
	// retain more detail. Recommended range [1e-3, 1e-1].
	Lambda float64
	// Kappa is the per-iteration growth factor of the penalty beta.
	// Smaller values mean more iterations and sharper edges. Recommended
	// range (1, 2].
	Kappa float64
	// BetaMax caps the penalty schedule and thereby the iteration count.
	BetaMax float64
	// Parallel solves the per-channel image subproblems concurrently.
	// Channels are independent within an iteration, so this does not
	// change the result.
	Parallel bool
	// Progress, if set, is called after every iteration.
	Progress ProgressFunc
}

// DefaultOptions returns the hyperparameters recommended by the paper.
func DefaultOptions() Options {
	return Options{Lambda: DefaultLambda, Kappa: DefaultKappa, BetaMax: DefaultBetaMax}
}

func (o Options) withDefaults() Options {
	if o.Lambda == 0 {
		o.Lambda = DefaultLambda
	}
	if o.Kappa == 0 {
		o.Kappa = DefaultKappa
	}
	if o.BetaMax == 0 {
		o.BetaMax = DefaultBetaMax
	}
	return o
}

func (o Options) check() error {
	if o.Lambda <= 0 {
		return fmt.Errorf("l0: lambda must be positive, got %v", o.Lambda)
	}
	if o.Kappa <= 1 {
		return fmt.Errorf("l0: kappa must exceed 1, got %v", o.Kappa)
	}
	if o.BetaMax <= 0 {
		return fmt.Errorf("l0: beta_max must be positive, got %v", o.BetaMax)
	}
	return nil
}

// IterationCount returns the number of iterations the beta schedule runs:
// beta starts at 2*lambda, multiplies by kappa each step, and the loop
// exits once beta >= betaMax. Callers use it to scale progress reporting.
func IterationCount(lambda, kappa, betaMax float64) int {
	if lambda <= 0 || kappa <= 1 || betaMax <= 0 {
		return 0
	}
	n := 0
	for beta := 2 * lambda; beta < betaMax; beta *= kappa {
		n++
	}
	return n
}

// Smooth runs the half-quadratic splitting loop on img and returns the
// smoothed image as a new tensor of the same shape. Samples are expected in
// [0, 1]; the result stays in that range for any such input. The input is
// not modified. Cancellation is honored between iterations only.
func Smooth(ctx context.Context, img *tensor.Dense, opts Options) (*tensor.Dense, error) {
	if err := tensor.Validate(img); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := opts.check(); err != nil {
		return nil, err
	}

	height, width, channels := img.H, img.W, img.C

	plans := []*fft.Plan{fft.NewPlan(height, width)}
	if opts.Parallel && channels > 1 {
		for i := 1; i < channels; i++ {
			plans = append(plans, fft.NewPlan(height, width))
		}
	}

	otfH, err := psf.ToOTF(psf.HorizontalDiff, plans[0])
	if err != nil {
		return nil, err
	}
	otfV, err := psf.ToOTF(psf.VerticalDiff, plans[0])
	if err != nil {
		return nil, err
	}

	// Squared-magnitude frequency response of the two difference operators,
	// shared by every channel's solve. Always >= 0, so the solve denominator
	// 1 + beta*denom2 never drops below 1.
	denom2 := psf.PowerSpectrum(otfH)
	for i, p := range psf.PowerSpectrum(otfV) {
		denom2[i] += p
	}

	// Frequency transform of the input, one plane per channel. Fixed for
	// the whole run; the solve anchors the evolving S to it.
	imgFFT := make([][]complex128, channels)
	for ch := 0; ch < channels; ch++ {
		plane := make([]complex128, height*width)
		channelToComplex(img, ch, plane)
		plans[0].Forward(plane, plane)
		imgFFT[ch] = plane
	}

	work := make([][]complex128, len(plans))
	for i := range work {
		work[i] = make([]complex128, height*width)
	}

	s := img.Clone()
	gradH := &tensor.Dense{H: height, W: width, C: channels, Data: make([]float64, len(s.Data))}
	gradV := &tensor.Dense{H: height, W: width, C: channels, Data: make([]float64, len(s.Data))}
	numer2 := &tensor.Dense{H: height, W: width, C: channels, Data: make([]float64, len(s.Data))}
	energy := make([]float64, height*width)

	total := IterationCount(opts.Lambda, opts.Kappa, opts.BetaMax)
	iteration := 0

	for beta := 2 * opts.Lambda; beta < opts.BetaMax; beta *= opts.Kappa {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Gradient subproblem: keep a pixel's gradient only if its
		// channel-summed energy clears lambda/beta, else collapse it to
		// zero. This is the exact minimizer of the L0-penalized
		// subproblem.
		forwardDiff(s, gradH, gradV)
		thresholdGradients(gradH, gradV, energy, opts.Lambda/beta)

		// Image subproblem right-hand side: adjoint circular differences
		// of the thresholded fields.
		divergence(gradH, gradV, numer2)

		if len(plans) > 1 {
			var wg sync.WaitGroup
			for ch := 0; ch < channels; ch++ {
				wg.Add(1)
				go func(ch int) {
					defer wg.Done()
					solveChannel(plans[ch], work[ch], numer2, imgFFT[ch], denom2, beta, s, ch)
				}(ch)
			}
			wg.Wait()
		} else {
			for ch := 0; ch < channels; ch++ {
				solveChannel(plans[0], work[0], numer2, imgFFT[ch], denom2, beta, s, ch)
			}
		}

		if i := firstNonFinite(s.Data); i >= 0 {
			return nil, fmt.Errorf("%w: sample index %d, beta %g", ErrNumericDegeneracy, i, beta)
		}

		iteration++
		if opts.Progress != nil {
			opts.Progress(iteration, total)
		}
	}

	return s, nil
}

// solveChannel performs the frequency-domain Tikhonov solve for one channel:
// S_ch = Re(IFFT((imgFFT + beta*FFT(numer2_ch)) / (1 + beta*denom2))).
func solveChannel(plan *fft.Plan, plane []complex128, numer2 *tensor.Dense, imgFFT []complex128, denom2 []float64, beta float64, dst *tensor.Dense, ch int) {
	channelToComplex(numer2, ch, plane)
	plan.Forward(plane, plane)

	b := complex(beta, 0)
	for i := range plane {
		plane[i] = (imgFFT[i] + b*plane[i]) / complex(1+beta*denom2[i], 0)
	}

	plan.Inverse(plane, plane)

	c := dst.C
	for i, v := range plane {
		dst.Data[i*c+ch] = real(v)
	}
}

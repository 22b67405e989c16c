package l0

import (
	"context"
	"fmt"

	"l0-obliterator/internal/tensor"
)

// AlgorithmName is the registry key for the L0 smoother.
const AlgorithmName = "L0 Gradient Smoothing"

// Processor adapts the smoothing core to the algorithms.Algorithm interface.
type Processor struct {
	name     string
	progress ProgressFunc
}

func NewProcessor() *Processor {
	return &Processor{name: AlgorithmName}
}

func (p *Processor) GetName() string {
	return p.name
}

// SetProgressCallback installs a per-iteration progress callback used by
// subsequent Process calls.
func (p *Processor) SetProgressCallback(fn ProgressFunc) {
	p.progress = fn
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{
		"lambda":              DefaultLambda,  // Smoothing weight, smaller retains more detail
		"kappa":               DefaultKappa,   // Beta growth rate, smaller means more iterations
		"beta_max":            DefaultBetaMax, // Penalty cap, drives iteration count
		"parallel_processing": true,           // Solve channels concurrently
	}
}

func (p *Processor) ValidateParameters(params map[string]interface{}) error {
	if lambda, ok := params["lambda"].(float64); ok {
		if lambda < 0.001 || lambda > 0.1 {
			return fmt.Errorf("lambda must be between 0.001 and 0.1, got: %f", lambda)
		}
	}

	if kappa, ok := params["kappa"].(float64); ok {
		if kappa <= 1.0 || kappa > 2.0 {
			return fmt.Errorf("kappa must be greater than 1.0 and at most 2.0, got: %f", kappa)
		}
	}

	if betaMax, ok := params["beta_max"].(float64); ok {
		if betaMax <= 0 {
			return fmt.Errorf("beta_max must be positive, got: %f", betaMax)
		}
	}

	return nil
}

func (p *Processor) Process(input *tensor.Dense, params map[string]interface{}) (*tensor.Dense, error) {
	return p.ProcessWithContext(context.Background(), input, params)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *tensor.Dense, params map[string]interface{}) (*tensor.Dense, error) {
	if err := tensor.Validate(input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	if err := p.ValidateParameters(params); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	opts := p.optionsFromParams(params)
	output, err := Smooth(ctx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("smoothing failed: %w", err)
	}

	return output, nil
}

func (p *Processor) optionsFromParams(params map[string]interface{}) Options {
	opts := DefaultOptions()
	opts.Progress = p.progress

	if lambda, ok := params["lambda"].(float64); ok {
		opts.Lambda = lambda
	}
	if kappa, ok := params["kappa"].(float64); ok {
		opts.Kappa = kappa
	}
	if betaMax, ok := params["beta_max"].(float64); ok {
		opts.BetaMax = betaMax
	}
	if parallel, ok := params["parallel_processing"].(bool); ok {
		opts.Parallel = parallel
	}

	return opts
}

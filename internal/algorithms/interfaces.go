package algorithms

import (
	"context"

	"l0-obliterator/internal/tensor"
)

// Algorithm defines the interface for image processing algorithms.
type Algorithm interface {
	Process(input *tensor.Dense, params map[string]interface{}) (*tensor.Dense, error)
	ValidateParameters(params map[string]interface{}) error
	GetDefaultParameters() map[string]interface{}
	GetName() string
}

// ContextualAlgorithm extends Algorithm with context support for cancellation.
type ContextualAlgorithm interface {
	Algorithm
	ProcessWithContext(ctx context.Context, input *tensor.Dense, params map[string]interface{}) (*tensor.Dense, error)
}

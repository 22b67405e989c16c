// Package pipeline loads images into normalized tensors, runs a registered
// smoothing algorithm over them, and encodes the result. Decoding prefers
// OpenCV with a standard-library fallback; encoding is pure Go.
package pipeline

import (
	"l0-obliterator/internal/tensor"
)

// ImageData carries a decoded image through the pipeline. Tensor holds
// samples normalized to [0, 1]; Format is the detected container format.
type ImageData struct {
	Tensor   *tensor.Dense
	Width    int
	Height   int
	Channels int
	Format   string
	Path     string
}

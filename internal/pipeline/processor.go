package pipeline

import (
	"context"
	"fmt"
	"time"

	"l0-obliterator/internal/algorithms"
	"l0-obliterator/internal/logger"
)

// Processor coordinates one smoothing run: load, process, measure, save.
type Processor struct {
	logger           logger.Logger
	algorithmManager *algorithms.Manager
	loader           *ImageLoader
	saver            *ImageSaver
}

func NewProcessor(log logger.Logger, manager *algorithms.Manager) *Processor {
	return &Processor{
		logger:           log,
		algorithmManager: manager,
		loader:           NewImageLoader(log),
		saver:            NewImageSaver(log),
	}
}

// Run smooths the image at inputPath with the named algorithm and writes
// the result to outputPath. Returns the computed quality metrics.
func (p *Processor) Run(ctx context.Context, inputPath, outputPath, algorithmName string, params map[string]interface{}) (*SmoothingMetrics, error) {
	algorithm, err := p.algorithmManager.GetAlgorithm(algorithmName)
	if err != nil {
		return nil, err
	}

	inputData, err := p.loader.LoadFromFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}

	outputData, err := p.ProcessImage(ctx, inputData, algorithm, params)
	if err != nil {
		return nil, err
	}

	metrics, err := CalculateSmoothingMetrics(inputData.Tensor, outputData.Tensor)
	if err != nil {
		return nil, fmt.Errorf("metrics calculation failed: %w", err)
	}

	if err := p.saver.SaveToFile(outputPath, outputData); err != nil {
		return nil, fmt.Errorf("save failed: %w", err)
	}

	return metrics, nil
}

// ProcessImage runs the algorithm over already-loaded image data.
func (p *Processor) ProcessImage(ctx context.Context, inputData *ImageData, algorithm algorithms.Algorithm, params map[string]interface{}) (*ImageData, error) {
	p.logger.Debug("ImageProcessor", "processing started", map[string]interface{}{
		"algorithm": algorithm.GetName(),
		"width":     inputData.Width,
		"height":    inputData.Height,
		"channels":  inputData.Channels,
	})

	started := time.Now()

	var err error
	result := inputData.Tensor
	if contextual, ok := algorithm.(algorithms.ContextualAlgorithm); ok {
		result, err = contextual.ProcessWithContext(ctx, inputData.Tensor, params)
	} else {
		result, err = algorithm.Process(inputData.Tensor, params)
	}
	if err != nil {
		return nil, fmt.Errorf("algorithm processing failed: %w", err)
	}

	processedData := &ImageData{
		Tensor:   result,
		Width:    result.W,
		Height:   result.H,
		Channels: result.C,
		Format:   inputData.Format,
		Path:     inputData.Path,
	}

	p.logger.Info("ImageProcessor", "processing completed", map[string]interface{}{
		"algorithm":   algorithm.GetName(),
		"input_size":  fmt.Sprintf("%dx%d", inputData.Width, inputData.Height),
		"output_size": fmt.Sprintf("%dx%d", processedData.Width, processedData.Height),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return processedData, nil
}

package pipeline

import (
	"math"
	"testing"

	"l0-obliterator/internal/tensor"
)

func flatTensor(t *testing.T, h, w, c int, v float64) *tensor.Dense {
	t.Helper()
	d, err := tensor.NewDense(h, w, c)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	d.Fill(v)
	return d
}

func TestMetricsIdenticalFlatImages(t *testing.T) {
	a := flatTensor(t, 4, 4, 1, 0.5)
	b := a.Clone()

	m, err := CalculateSmoothingMetrics(a, b)
	if err != nil {
		t.Fatalf("CalculateSmoothingMetrics: %v", err)
	}

	if m.InputGradientDensity != 0 {
		t.Errorf("flat input gradient density = %v, want 0", m.InputGradientDensity)
	}
	if m.OutputGradientDensity != 0 {
		t.Errorf("flat output gradient density = %v, want 0", m.OutputGradientDensity)
	}
	if !math.IsInf(m.PSNR, 1) {
		t.Errorf("PSNR of identical images = %v, want +Inf", m.PSNR)
	}
	if m.EdgePreservation != 1.0 {
		t.Errorf("edge preservation = %v, want 1.0 when nothing changed", m.EdgePreservation)
	}
}

func TestGradientDensityOfStep(t *testing.T) {
	// 4x4 step: columns 0-1 are 0, columns 2-3 are 1. Non-zero circular
	// gradients sit at x=1 (the step) and x=3 (the wrap): 8 of 16 pixels.
	step, err := tensor.NewDense(4, 4, 1)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	for y := 0; y < 4; y++ {
		step.Set(y, 2, 0, 1)
		step.Set(y, 3, 0, 1)
	}

	m, err := CalculateSmoothingMetrics(step, step.Clone())
	if err != nil {
		t.Fatalf("CalculateSmoothingMetrics: %v", err)
	}
	if m.InputGradientDensity != 0.5 {
		t.Errorf("step gradient density = %v, want 0.5", m.InputGradientDensity)
	}
}

func TestMetricsPSNRKnownValue(t *testing.T) {
	a := flatTensor(t, 2, 2, 1, 0.5)
	b := flatTensor(t, 2, 2, 1, 0.6)

	m, err := CalculateSmoothingMetrics(a, b)
	if err != nil {
		t.Fatalf("CalculateSmoothingMetrics: %v", err)
	}

	// MSE = 0.01, PSNR = -10*log10(0.01) = 20 dB.
	if math.Abs(m.PSNR-20) > 1e-9 {
		t.Errorf("PSNR = %v, want 20", m.PSNR)
	}
}

func TestMetricsShapeMismatch(t *testing.T) {
	a := flatTensor(t, 4, 4, 1, 0.5)
	b := flatTensor(t, 4, 5, 1, 0.5)

	if _, err := CalculateSmoothingMetrics(a, b); err == nil {
		t.Error("CalculateSmoothingMetrics accepted mismatched shapes")
	}
}

func TestMetricsDescriptionCoversFields(t *testing.T) {
	m := &SmoothingMetrics{PSNR: 30}
	desc := m.GetMetricsDescription()
	for _, key := range []string{"InputGradientDensity", "OutputGradientDensity", "PSNR", "EdgePreservation"} {
		if _, ok := desc[key]; !ok {
			t.Errorf("description missing %s", key)
		}
	}
}

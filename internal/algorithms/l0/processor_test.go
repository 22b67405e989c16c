package l0

import (
	"testing"

	"l0-obliterator/internal/tensor"
)

func TestProcessorDefaults(t *testing.T) {
	p := NewProcessor()

	if p.GetName() != AlgorithmName {
		t.Errorf("GetName() = %q, want %q", p.GetName(), AlgorithmName)
	}

	defaults := p.GetDefaultParameters()
	if defaults["lambda"] != DefaultLambda {
		t.Errorf("default lambda = %v, want %v", defaults["lambda"], DefaultLambda)
	}
	if defaults["kappa"] != DefaultKappa {
		t.Errorf("default kappa = %v, want %v", defaults["kappa"], DefaultKappa)
	}
	if defaults["beta_max"] != DefaultBetaMax {
		t.Errorf("default beta_max = %v, want %v", defaults["beta_max"], DefaultBetaMax)
	}
	if err := p.ValidateParameters(defaults); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestProcessorValidateParameters(t *testing.T) {
	p := NewProcessor()

	bad := []map[string]interface{}{
		{"lambda": 0.5},
		{"lambda": 0.0001},
		{"kappa": 1.0},
		{"kappa": 3.0},
		{"beta_max": -1.0},
		{"beta_max": 0.0},
	}
	for _, params := range bad {
		if err := p.ValidateParameters(params); err == nil {
			t.Errorf("ValidateParameters(%v) accepted out-of-range value", params)
		}
	}

	good := map[string]interface{}{"lambda": 0.05, "kappa": 1.5, "beta_max": 1e4}
	if err := p.ValidateParameters(good); err != nil {
		t.Errorf("ValidateParameters(%v) = %v, want nil", good, err)
	}
}

func TestProcessorProcess(t *testing.T) {
	p := NewProcessor()

	img, err := tensor.NewDense(4, 4, 1)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	img.Fill(0.3)

	out, err := p.Process(img, p.GetDefaultParameters())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.SameShape(img) {
		t.Errorf("output shape (%d, %d, %d), want input shape", out.H, out.W, out.C)
	}
}

func TestProcessorRejectsInvalidInput(t *testing.T) {
	p := NewProcessor()

	if _, err := p.Process(nil, p.GetDefaultParameters()); err == nil {
		t.Error("Process(nil) succeeded, want error")
	}

	img, _ := tensor.NewDense(4, 4, 1)
	if _, err := p.Process(img, map[string]interface{}{"lambda": 5.0}); err == nil {
		t.Error("Process with invalid lambda succeeded, want error")
	}
}

package tensor

import (
	"errors"
	"testing"
)

func TestNewDenseRejectsBadShapes(t *testing.T) {
	cases := []struct{ h, w, c int }{
		{0, 4, 1},
		{4, 0, 1},
		{4, 4, 0},
		{-1, 4, 1},
	}
	for _, tc := range cases {
		if _, err := NewDense(tc.h, tc.w, tc.c); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("NewDense(%d, %d, %d) error = %v, want ErrInvalidImage", tc.h, tc.w, tc.c, err)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Validate(nil) = %v, want ErrInvalidImage", err)
	}

	d, err := NewDense(2, 3, 1)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	if err := Validate(d); err != nil {
		t.Errorf("Validate(valid) = %v, want nil", err)
	}

	d.Data = d.Data[:3]
	if err := Validate(d); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Validate(truncated data) = %v, want ErrInvalidImage", err)
	}
}

func TestAtSetLayout(t *testing.T) {
	d, err := NewDense(2, 3, 2)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}

	d.Set(1, 2, 1, 0.5)
	if got := d.At(1, 2, 1); got != 0.5 {
		t.Errorf("At(1, 2, 1) = %v, want 0.5", got)
	}
	// (y*W+x)*C + c = (1*3+2)*2 + 1 = 11
	if d.Data[11] != 0.5 {
		t.Errorf("Data[11] = %v, want 0.5 (row-major channel-innermost layout)", d.Data[11])
	}
}

func TestCloneIsDeep(t *testing.T) {
	d, _ := NewDense(2, 2, 1)
	d.Fill(0.25)

	clone := d.Clone()
	clone.Set(0, 0, 0, 0.75)

	if d.At(0, 0, 0) != 0.25 {
		t.Errorf("mutating clone changed original: %v", d.At(0, 0, 0))
	}
	if !d.SameShape(clone) {
		t.Error("clone shape differs from original")
	}
}

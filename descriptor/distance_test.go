package descriptor

import (
	"errors"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	d, err := Distance(Descriptor{0, 0}, Descriptor{3, 4})
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if math.Abs(float64(d)-5) > 1e-5 {
		t.Fatalf("Distance(0,0)-(3,4) = %v, want 5", d)
	}

	d, err = Distance(Descriptor{1, 2, 3}, Descriptor{1, 2, 3})
	if err != nil || d != 0 {
		t.Fatalf("Distance(a,a) = %v, %v; want 0, nil", d, err)
	}
}

func TestDistance_DimensionMismatch(t *testing.T) {
	if _, err := Distance(Descriptor{1, 2}, Descriptor{1, 2, 3}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Distance mismatch error = %v, want ErrInvalidInput", err)
	}
}

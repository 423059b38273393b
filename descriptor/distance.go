package descriptor

import (
	"fmt"

	"github.com/viant/vec/search"
)

// Distance returns the Euclidean distance between two descriptors. It returns
// an error wrapping ErrInvalidInput if the dimensions differ.
func Distance(a, b Descriptor) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: distance dimension mismatch: %d vs %d", ErrInvalidInput, len(a), len(b))
	}
	return distance(a, b), nil
}

// MustDistance is Distance for callers that already checked dimensions.
func MustDistance(a, b Descriptor) float32 {
	return distance(a, b)
}

func distance(a, b Descriptor) float32 {
	if len(a) == 0 {
		return 0
	}
	return search.Float32s(a).EuclideanDistance([]float32(b))
}

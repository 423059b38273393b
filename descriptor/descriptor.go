package descriptor

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrInvalidInput reports malformed descriptor input: an empty set where one
// is required, a dimension mismatch, or a neighbour count the data cannot
// satisfy.
var ErrInvalidInput = errors.New("descriptor: invalid input")

// Descriptor is a fixed-length feature vector. Descriptors are treated as
// immutable once produced by a detector.
type Descriptor []float32

// Dim returns the descriptor dimension.
func (d Descriptor) Dim() int { return len(d) }

// Set is an ordered sequence of descriptors addressed by position.
// The engine only reads a Set; it never modifies it.
type Set []Descriptor

// Len returns the number of descriptors in the set.
func (s Set) Len() int { return len(s) }

// Dim returns the dimension of the first descriptor, or 0 for an empty set.
func (s Set) Dim() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Validate checks that every descriptor has the same, non-zero dimension.
func (s Set) Validate() error {
	if len(s) == 0 {
		return nil
	}
	dim := len(s[0])
	if dim == 0 {
		return fmt.Errorf("%w: descriptor 0 has zero dimension", ErrInvalidInput)
	}
	for i := range s {
		if len(s[i]) != dim {
			return fmt.Errorf("%w: descriptor %d has dim %d, want %d", ErrInvalidInput, i, len(s[i]), dim)
		}
	}
	return nil
}

// Keypoint is the image location a descriptor was computed at.
type Keypoint struct {
	X     float32
	Y     float32
	Size  float32
	Angle float32
}

// Features is the output of a detector: Keypoints[i] is the location of
// Descriptors[i]. The alignment is preserved by every stage of the engine so
// that a match (queryIndex, trainIndex) can be drawn between the two keypoint
// lists.
type Features struct {
	Keypoints   []Keypoint
	Descriptors Set
}

// Len returns the number of features.
func (f *Features) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Descriptors)
}

// Validate checks keypoint/descriptor alignment and descriptor dimensions.
func (f *Features) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil features", ErrInvalidInput)
	}
	if len(f.Keypoints) != len(f.Descriptors) {
		return fmt.Errorf("%w: %d keypoints for %d descriptors", ErrInvalidInput, len(f.Keypoints), len(f.Descriptors))
	}
	return f.Descriptors.Validate()
}

// Extractor turns an image into keypoints and descriptors. Detection itself
// lives outside this module; implementations wrap whatever detector the
// application uses.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) (*Features, error)
}

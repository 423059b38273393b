package index

import "github.com/viant/descmatch/descriptor"

// Index defines a descriptor index with basic lifecycle methods.
type Index interface {
	// Build constructs the index over set. The set must be non-empty and
	// uniform in dimension. The index keeps a reference to set and never
	// modifies it. Any previously built state is replaced.
	Build(set descriptor.Set) error

	// Query returns up to k neighbours of query ordered by ascending
	// distance. budget bounds the search effort for approximate indexes and
	// is ignored by exact ones. It fails with descriptor.ErrInvalidInput on
	// a dimension mismatch, k < 1, k > Len() or budget < 1.
	Query(query descriptor.Descriptor, k, budget int) ([]Neighbor, error)

	// Len returns the number of indexed descriptors.
	Len() int

	// Dim returns the descriptor dimension, or 0 before Build.
	Dim() int
}

// Neighbor is a train descriptor position together with its distance to a
// query.
type Neighbor struct {
	Index    int
	Distance float32
}

package bruteforce

import (
	"sort"
	"sync"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
)

// Index compares a query against every indexed descriptor.
type Index struct {
	mu  sync.RWMutex
	set descriptor.Set
	dim int
}

// New returns an empty index.
func New() *Index { return &Index{} }

// Build keeps a reference to set after validating it.
func (i *Index) Build(set descriptor.Set) error {
	if err := index.ValidateBuild("bruteforce", set); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.set = set
	i.dim = set.Dim()
	return nil
}

// Query returns the exact k nearest neighbours; budget is validated but
// otherwise ignored.
func (i *Index) Query(query descriptor.Descriptor, k, budget int) ([]index.Neighbor, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if err := index.ValidateQuery("bruteforce", len(i.set), i.dim, query, k, budget); err != nil {
		return nil, err
	}
	all := make([]index.Neighbor, len(i.set))
	for j, d := range i.set {
		all[j] = index.Neighbor{Index: j, Distance: descriptor.MustDistance(query, d)}
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].Distance != all[b].Distance {
			return all[a].Distance < all[b].Distance
		}
		return all[a].Index < all[b].Index
	})
	return all[:k], nil
}

// Len returns the number of indexed descriptors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.set)
}

// Dim returns the indexed dimension.
func (i *Index) Dim() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dim
}

var _ index.Index = (*Index)(nil)

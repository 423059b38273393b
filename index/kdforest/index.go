package kdforest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
	"github.com/viant/descmatch/internal/kdtree"
)

// Index is a randomized KD forest. Queries are safe for concurrent use; a
// Build holds an exclusive lock, so a query never observes a partly built
// forest.
type Index struct {
	mu    sync.RWMutex
	opts  options
	set   descriptor.Set
	dim   int
	trees []*kdtree.Tree
}

// New returns an empty forest configured by opts.
func New(opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Index{opts: o}
}

// Build constructs the forest over set. See BuildContext.
func (i *Index) Build(set descriptor.Set) error {
	return i.BuildContext(context.Background(), set)
}

// BuildContext constructs the configured number of trees over set, in
// parallel. Each tree draws from its own generator seeded with (seed, tree
// number), so the result does not depend on scheduling. On error or
// cancellation the previously built forest is kept.
func (i *Index) BuildContext(ctx context.Context, set descriptor.Set) error {
	if err := index.ValidateBuild("kdforest", set); err != nil {
		return err
	}
	if i.opts.trees < 1 {
		return fmt.Errorf("%w: kdforest: trees=%d, want >= 1", descriptor.ErrInvalidInput, i.opts.trees)
	}
	treeOpts := kdtree.Options{
		LeafSize:   i.opts.leafSize,
		SampleSize: i.opts.sampleSize,
		TopDims:    i.opts.topDims,
	}
	trees := make([]*kdtree.Tree, i.opts.trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.opts.parallelism)
	for t := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(uint64(i.opts.seed), uint64(t)))
			trees[t] = kdtree.Build(set, rng, treeOpts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("kdforest: build: %w", err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.set = set
	i.dim = set.Dim()
	i.trees = trees
	return nil
}

// Query returns approximately the k nearest neighbours of query, ordered by
// ascending distance. budget is the number of descriptors whose distance
// may be computed; more budget never yields a worse answer.
func (i *Index) Query(query descriptor.Descriptor, k, budget int) ([]index.Neighbor, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if err := index.ValidateQuery("kdforest", len(i.set), i.dim, query, k, budget); err != nil {
		return nil, err
	}
	found := kdtree.Search(i.trees, i.set, query, k, budget)
	out := make([]index.Neighbor, len(found))
	for j, n := range found {
		out[j] = index.Neighbor{Index: int(n.Index), Distance: n.Distance}
	}
	return out, nil
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

// Trees returns the number of trees in the built forest.
func (i *Index) Trees() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.trees)
}

var _ index.Index = (*Index)(nil)

package match

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
)

type matchOptions struct {
	parallelism int
}

// MatchOption configures MatchAll.
type MatchOption func(*matchOptions)

// WithParallelism bounds the number of queries searched concurrently.
// 1 runs sequentially.
func WithParallelism(n int) MatchOption {
	return func(o *matchOptions) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// MatchAll finds the two nearest train neighbours of every descriptor in
// querySet. The result follows query order. An empty querySet yields an
// empty result. A malformed querySet, or one whose dimension differs from a
// built index, is an error wrapping ErrInvalidInput even when the index is
// too small to match. Once the input is valid, an index holding fewer than
// two descriptors yields an empty result since the ratio test is undefined.
//
// Queries are independent and run in parallel against the read-only index.
// ctx is checked before each query.
func MatchAll(ctx context.Context, idx index.Index, querySet descriptor.Set, searchBudget int, opts ...MatchOption) ([]RawMatchPair, error) {
	o := matchOptions{parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if len(querySet) == 0 {
		return []RawMatchPair{}, nil
	}
	if err := querySet.Validate(); err != nil {
		return nil, fmt.Errorf("match: query set: %w", err)
	}
	if idx.Dim() > 0 && querySet.Dim() != idx.Dim() {
		return nil, fmt.Errorf("%w: match: query dim %d != index dim %d", ErrInvalidInput, querySet.Dim(), idx.Dim())
	}
	if idx.Len() < 2 {
		return []RawMatchPair{}, nil
	}
	pairs := make([]RawMatchPair, len(querySet))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for q := range querySet {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found, err := idx.Query(querySet[q], 2, searchBudget)
			if err != nil {
				return fmt.Errorf("match: query %d: %w", q, err)
			}
			pairs[q] = RawMatchPair{QueryIndex: q, Best: found[0], SecondBest: found[1]}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pairs, nil
}

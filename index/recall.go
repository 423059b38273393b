package index

import (
	"context"
	"fmt"

	"github.com/viant/descmatch/descriptor"
)

// Recall measures the fraction of the exact k nearest neighbours that approx
// also returns, averaged over queries. exact is expected to be an exhaustive
// index built over the same set as approx.
func Recall(ctx context.Context, approx, exact Index, queries descriptor.Set, k, budget int) (float64, error) {
	if len(queries) == 0 {
		return 0, fmt.Errorf("%w: recall: empty query set", descriptor.ErrInvalidInput)
	}
	if approx.Len() != exact.Len() {
		return 0, fmt.Errorf("%w: recall: index sizes differ: %d vs %d", descriptor.ErrInvalidInput, approx.Len(), exact.Len())
	}
	var found, total int
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		want, err := exact.Query(q, k, budget)
		if err != nil {
			return 0, fmt.Errorf("recall: exact query %d: %w", i, err)
		}
		got, err := approx.Query(q, k, budget)
		if err != nil {
			return 0, fmt.Errorf("recall: approximate query %d: %w", i, err)
		}
		hits := make(map[int]bool, len(got))
		for _, n := range got {
			hits[n.Index] = true
		}
		for _, n := range want {
			if hits[n.Index] {
				found++
			}
		}
		total += len(want)
	}
	return float64(found) / float64(total), nil
}

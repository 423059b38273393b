package kdforest

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
	"github.com/viant/descmatch/index/bruteforce"
)

func randomSet(rng *rand.Rand, n, dim int) descriptor.Set {
	out := make(descriptor.Set, n)
	for i := range out {
		d := make(descriptor.Descriptor, dim)
		for j := range d {
			d[j] = rng.Float32()
		}
		out[i] = d
	}
	return out
}

func TestBuild_Errors(t *testing.T) {
	if err := New().Build(nil); !errors.Is(err, descriptor.ErrInvalidInput) {
		t.Fatalf("Build(empty) = %v, want ErrInvalidInput", err)
	}
	if err := New(WithTrees(0)).Build(descriptor.Set{{1}}); !errors.Is(err, descriptor.ErrInvalidInput) {
		t.Fatalf("Build(trees=0) = %v, want ErrInvalidInput", err)
	}
	if err := New().Build(descriptor.Set{{1, 2}, {1}}); !errors.Is(err, descriptor.ErrInvalidInput) {
		t.Fatalf("Build(mixed dims) = %v, want ErrInvalidInput", err)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx := New()
	if err := idx.BuildContext(ctx, descriptor.Set{{1}, {2}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("BuildContext(cancelled) = %v, want context.Canceled", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("Len() after cancelled build = %d, want 0", idx.Len())
	}
}

func TestQuery_DimensionGuard(t *testing.T) {
	idx := New(WithTrees(2))
	set := randomSet(rand.New(rand.NewPCG(1, 1)), 20, 128)
	if err := idx.Build(set); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, dim := range []int{0, 64, 127, 129} {
		got, err := idx.Query(make(descriptor.Descriptor, dim), 2, 10)
		if !errors.Is(err, descriptor.ErrInvalidInput) || got != nil {
			t.Fatalf("Query(dim=%d) = %v, %v; want nil, ErrInvalidInput", dim, got, err)
		}
	}
	if _, err := idx.Query(set[0], 21, 10); !errors.Is(err, descriptor.ErrInvalidInput) {
		t.Fatalf("Query(k > Len) = %v, want ErrInvalidInput", err)
	}
	if _, err := idx.Query(set[0], 2, 0); !errors.Is(err, descriptor.ErrInvalidInput) {
		t.Fatalf("Query(budget=0) = %v, want ErrInvalidInput", err)
	}
}

func TestQuery_SelfMatchIdentity(t *testing.T) {
	set := randomSet(rand.New(rand.NewPCG(2, 3)), 100, 128)
	idx := New(WithTrees(5), WithSeed(7))
	if err := idx.Build(set); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Trees() != 5 || idx.Len() != 100 || idx.Dim() != 128 {
		t.Fatalf("Trees/Len/Dim = %d/%d/%d, want 5/100/128", idx.Trees(), idx.Len(), idx.Dim())
	}
	for i, q := range set {
		got, err := idx.Query(q, 2, 50)
		if err != nil {
			t.Fatalf("Query %d failed: %v", i, err)
		}
		if got[0].Index != i || got[0].Distance != 0 {
			t.Fatalf("Query %d best = %+v, want {%d 0}", i, got[0], i)
		}
		if got[1].Distance <= 0 {
			t.Fatalf("Query %d second = %+v, want positive distance", i, got[1])
		}
	}
}

func TestQuery_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 5))
	set := randomSet(rng, 400, 32)
	queries := randomSet(rng, 30, 32)
	a := New(WithSeed(99), WithBuildParallelism(1))
	b := New(WithSeed(99), WithBuildParallelism(8))
	if err := a.Build(set); err != nil {
		t.Fatalf("Build a failed: %v", err)
	}
	if err := b.Build(set); err != nil {
		t.Fatalf("Build b failed: %v", err)
	}
	for qi, q := range queries {
		ra, _ := a.Query(q, 3, 20)
		rb, _ := b.Query(q, 3, 20)
		for j := range ra {
			if ra[j] != rb[j] {
				t.Fatalf("query %d result %d: %+v vs %+v", qi, j, ra[j], rb[j])
			}
		}
	}
}

func TestQuery_RecallGrowsWithBudget(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	set := randomSet(rng, 1000, 32)
	queries := randomSet(rng, 100, 32)
	approx := New(WithTrees(4), WithSeed(3))
	if err := approx.Build(set); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	exact := bruteforce.New()
	if err := exact.Build(set); err != nil {
		t.Fatalf("bruteforce Build failed: %v", err)
	}
	prev := -1.0
	for _, budget := range []int{1, 16, 64, 256, 1000} {
		recall, err := index.Recall(context.Background(), approx, exact, queries, 2, budget)
		if err != nil {
			t.Fatalf("Recall(budget=%d) failed: %v", budget, err)
		}
		if recall < prev {
			t.Fatalf("recall dropped from %v to %v at budget %d", prev, recall, budget)
		}
		prev = recall
	}
	if prev < 0.8 {
		t.Fatalf("recall at full budget = %v, want >= 0.8", prev)
	}
}

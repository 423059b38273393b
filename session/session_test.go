package session

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
	"github.com/viant/descmatch/match"
)

// scenario returns train and query features where queries 0..89 are exact
// copies of train descriptors and queries 90..99 sit halfway between a train
// descriptor and a second near copy of it.
func scenario(seed uint64) (train, query *descriptor.Features) {
	rng := rand.New(rand.NewPCG(seed, seed))
	const n, dim = 100, 128
	train = &descriptor.Features{Keypoints: make([]descriptor.Keypoint, n), Descriptors: make(descriptor.Set, n)}
	query = &descriptor.Features{Keypoints: make([]descriptor.Keypoint, n), Descriptors: make(descriptor.Set, n)}
	for i := 0; i < 90; i++ {
		d := make(descriptor.Descriptor, dim)
		for j := range d {
			d[j] = rng.Float32()
		}
		train.Descriptors[i] = d
		query.Descriptors[i] = d
	}
	for k := 0; k < 10; k++ {
		base := train.Descriptors[k]
		delta := make([]float64, dim)
		var sum float64
		for j := range delta {
			delta[j] = rng.NormFloat64()
			sum += delta[j] * delta[j]
		}
		scale := 0.01 / math.Sqrt(sum)
		mid := make(descriptor.Descriptor, dim)
		far := make(descriptor.Descriptor, dim)
		for j := range base {
			mid[j] = base[j] + float32(delta[j]*scale)
			far[j] = base[j] + float32(2*delta[j]*scale)
		}
		train.Descriptors[90+k] = far
		query.Descriptors[90+k] = mid
	}
	for i := 0; i < n; i++ {
		train.Keypoints[i] = descriptor.Keypoint{X: float32(i), Y: 1}
		query.Keypoints[i] = descriptor.Keypoint{X: float32(i), Y: 2}
	}
	return train, query
}

func mustConfig(t *testing.T, opts ...match.Option) match.Configuration {
	t.Helper()
	cfg, err := match.NewConfiguration(opts...)
	if err != nil {
		t.Fatalf("NewConfiguration failed: %v", err)
	}
	return cfg
}

func TestRecompute_Scenario(t *testing.T) {
	train, query := scenario(3)
	s := New(WithSeed(7))
	if s.State() != Idle || s.Result() != nil {
		t.Fatalf("new session: state %v, result %v; want idle, nil", s.State(), s.Result())
	}
	res, err := s.Recompute(context.Background(), train, query, mustConfig(t, match.WithLineThickness(3)))
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if s.State() != Ready {
		t.Fatalf("State() = %v, want ready", s.State())
	}
	if s.Result() != res {
		t.Fatalf("Result() does not return the published result")
	}
	if res.Generation != 1 || s.Generation() != 1 {
		t.Fatalf("generation = %d/%d, want 1", res.Generation, s.Generation())
	}
	if res.Candidates != 100 || res.Accepted != 90 || len(res.Ranked) != 15 {
		t.Fatalf("candidates=%d accepted=%d ranked=%d, want 100/90/15", res.Candidates, res.Accepted, len(res.Ranked))
	}

	lines := res.Lines()
	if len(lines) != 15 {
		t.Fatalf("len(Lines()) = %d, want 15", len(lines))
	}
	for i, l := range lines {
		m := res.Ranked[i]
		if l.From != query.Keypoints[m.QueryIndex] || l.To != train.Keypoints[m.TrainIndex] {
			t.Fatalf("line %d = %+v, want query %d to train %d", i, l, m.QueryIndex, m.TrainIndex)
		}
		if l.Thickness != 3 {
			t.Fatalf("line %d thickness = %d, want 3", i, l.Thickness)
		}
	}
}

func TestRecompute_EarlyErrorsLeaveSessionUntouched(t *testing.T) {
	train, query := scenario(4)
	s := New()
	if _, err := s.Recompute(context.Background(), nil, query, mustConfig(t)); !errors.Is(err, match.ErrPrecondition) {
		t.Fatalf("Recompute(nil train) = %v, want ErrPrecondition", err)
	}
	if _, err := s.Recompute(context.Background(), train, nil, mustConfig(t)); !errors.Is(err, match.ErrPrecondition) {
		t.Fatalf("Recompute(nil query) = %v, want ErrPrecondition", err)
	}
	if _, err := s.Recompute(context.Background(), train, query, match.Configuration{}); !errors.Is(err, match.ErrConfiguration) {
		t.Fatalf("Recompute(zero config) = %v, want ErrConfiguration", err)
	}
	if s.State() != Idle || s.Generation() != 0 || s.Result() != nil {
		t.Fatalf("session changed: state %v generation %d", s.State(), s.Generation())
	}
}

func TestRecompute_FailureKeepsPreviousResult(t *testing.T) {
	train, query := scenario(5)
	s := New()
	first, err := s.Recompute(context.Background(), train, query, mustConfig(t))
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	short := &descriptor.Features{
		Keypoints:   []descriptor.Keypoint{{}},
		Descriptors: descriptor.Set{{1, 2, 3}},
	}
	if _, err := s.Recompute(context.Background(), train, short, mustConfig(t)); !errors.Is(err, match.ErrInvalidInput) {
		t.Fatalf("Recompute(dim mismatch) = %v, want ErrInvalidInput", err)
	}
	if _, err := s.Recompute(context.Background(), &descriptor.Features{}, query, mustConfig(t)); !errors.Is(err, match.ErrInvalidInput) {
		t.Fatalf("Recompute(empty train) = %v, want ErrInvalidInput", err)
	}
	if s.Result() != first || s.State() != Ready {
		t.Fatalf("after failures: state %v, result replaced = %v", s.State(), s.Result() != first)
	}
}

func TestRecompute_EmptyQueryIsSuccess(t *testing.T) {
	train, _ := scenario(6)
	s := New()
	res, err := s.Recompute(context.Background(), train, &descriptor.Features{}, mustConfig(t))
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if res == nil || len(res.Ranked) != 0 || s.State() != Ready {
		t.Fatalf("Recompute(empty query) = %+v, state %v; want empty ready result", res, s.State())
	}
}

func TestRecompute_DimensionMismatchIsNotAnEmptyResult(t *testing.T) {
	train := &descriptor.Features{Keypoints: make([]descriptor.Keypoint, 1), Descriptors: descriptor.Set{{1, 2}}}
	query := &descriptor.Features{Keypoints: make([]descriptor.Keypoint, 1), Descriptors: descriptor.Set{{1, 2, 3}}}
	s := New()
	res, err := s.Recompute(context.Background(), train, query, match.DefaultConfiguration())
	if !errors.Is(err, match.ErrPrecondition) || !errors.Is(err, match.ErrInvalidInput) {
		t.Fatalf("Recompute(dim mismatch) = %+v, %v; want ErrPrecondition and ErrInvalidInput", res, err)
	}
	if res != nil || s.Result() != nil || s.State() != Idle || s.Generation() != 0 {
		t.Fatalf("after mismatch: result %v state %v generation %d, want nil idle 0", s.Result(), s.State(), s.Generation())
	}
}

// blockingIndex blocks in BuildContext until its context is cancelled.
type blockingIndex struct {
	index.Index
	started chan struct{}
}

func (b *blockingIndex) BuildContext(ctx context.Context, _ descriptor.Set) error {
	close(b.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestRecompute_NewerRunSupersedes(t *testing.T) {
	train, query := scenario(8)
	s := New()
	build := s.newIndex
	blocked := &blockingIndex{started: make(chan struct{})}
	calls := 0
	s.newIndex = func(cfg match.Configuration) buildableIndex {
		calls++
		if calls == 1 {
			return blocked
		}
		return build(cfg)
	}

	cfg := mustConfig(t)
	errc := make(chan error, 1)
	go func() {
		_, err := s.Recompute(context.Background(), train, query, cfg)
		errc <- err
	}()
	<-blocked.started
	if s.State() != Building {
		t.Fatalf("State() = %v during build, want building", s.State())
	}

	res, err := s.Recompute(context.Background(), train, query, mustConfig(t, match.WithTopN(5)))
	if err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("first Recompute = %v, want ErrSuperseded", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("first Recompute was not cancelled")
	}
	if s.Result() != res || res.Generation != 2 || s.State() != Ready {
		t.Fatalf("published generation %d state %v, want 2 ready", s.Result().Generation, s.State())
	}
}

func TestReset(t *testing.T) {
	train, query := scenario(9)
	s := New()
	if _, err := s.Recompute(context.Background(), train, query, mustConfig(t)); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	s.Reset()
	if s.State() != Idle || s.Result() != nil {
		t.Fatalf("after Reset: state %v result %v, want idle nil", s.State(), s.Result())
	}
	res, err := s.Recompute(context.Background(), train, query, mustConfig(t))
	if err != nil {
		t.Fatalf("Recompute after Reset failed: %v", err)
	}
	if res.Generation != 3 {
		t.Fatalf("Generation = %d, want 3", res.Generation)
	}
}

func TestLines_NilResult(t *testing.T) {
	var r *Result
	if r.Lines() != nil {
		t.Fatalf("nil Result Lines() should be nil")
	}
}

func TestRecompute_LateFinisherIsDiscarded(t *testing.T) {
	train, query := scenario(10)
	s := New()
	reached := make(chan struct{})
	gate := make(chan struct{})
	s.beforePublish = func(gen uint64) {
		if gen == 1 {
			close(reached)
			<-gate
		}
	}

	cfg := mustConfig(t)
	errc := make(chan error, 1)
	go func() {
		_, err := s.Recompute(context.Background(), train, query, cfg)
		errc <- err
	}()
	<-reached

	second, err := s.Recompute(context.Background(), train, query, mustConfig(t, match.WithTopN(4)))
	if err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}
	close(gate)

	select {
	case err := <-errc:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("first Recompute = %v, want ErrSuperseded", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("first Recompute did not return")
	}
	if got := s.Result(); got != second || got.Generation != 2 {
		t.Fatalf("Result() = %+v, want generation 2", got)
	}
	if s.State() != Ready {
		t.Fatalf("State() = %v, want ready", s.State())
	}
}

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
	"github.com/viant/descmatch/index/kdforest"
	"github.com/viant/descmatch/match"
)

// ErrSuperseded is returned by a Recompute whose result was discarded because
// a newer run was requested or already published.
var ErrSuperseded = errors.New("session: superseded")

// buildableIndex is an index that can be built under a cancellable context.
type buildableIndex interface {
	index.Index
	BuildContext(ctx context.Context, set descriptor.Set) error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for run lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSeed sets the seed of every forest the session builds.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.seed = seed }
}

// WithParallelism bounds tree construction and query fan-out.
func WithParallelism(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// Session runs recomputes and holds the most recent published Result.
// It is safe for concurrent use.
type Session struct {
	logger      *slog.Logger
	seed        int64
	parallelism int
	newIndex    func(cfg match.Configuration) buildableIndex
	// beforePublish, when set, runs after a run has computed its result and
	// before it tries to publish.
	beforePublish func(gen uint64)

	mu        sync.Mutex
	state     State
	gen       uint64 // last generation handed out
	published uint64 // generation of result, 0 if none
	cancel    context.CancelFunc
	result    *Result
}

// New returns an Idle session.
func New(opts ...Option) *Session {
	s := &Session{
		logger:      slog.New(slog.DiscardHandler),
		seed:        kdforest.DefaultSeed,
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.newIndex = func(cfg match.Configuration) buildableIndex {
		return kdforest.New(
			kdforest.WithTrees(cfg.TreesCount()),
			kdforest.WithSeed(s.seed),
			kdforest.WithBuildParallelism(s.parallelism),
		)
	}
	return s
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the published result, or nil if no run has succeeded since
// the session was created or last reset.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Generation returns the generation of the most recently started run.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Reset cancels any run in flight and drops the published result, for
// example when the input images change.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.published = s.gen
	s.result = nil
	s.state = Idle
	s.logger.Debug("session reset", "generation", s.gen)
}

// Recompute builds an index over train, matches every query descriptor
// against it, applies the ratio test and ranks the survivors. On success the
// new Result is published and returned.
//
// Precondition and configuration errors, including train and query sets of
// different dimensions, are returned before any work starts and never touch
// the session. A dimension mismatch wraps both match.ErrPrecondition and
// match.ErrInvalidInput. Any later failure leaves the previously
// published result in place. A run cancelled by a newer Recompute or by Reset
// returns an error wrapping ErrSuperseded.
func (s *Session) Recompute(ctx context.Context, train, query *descriptor.Features, cfg match.Configuration) (*Result, error) {
	if train == nil || query == nil {
		return nil, fmt.Errorf("%w: session: train and query features are both required", match.ErrPrecondition)
	}
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: session: configuration was not built by match.NewConfiguration", match.ErrConfiguration)
	}
	if tdim, qdim := train.Descriptors.Dim(), query.Descriptors.Dim(); tdim > 0 && qdim > 0 && tdim != qdim {
		return nil, fmt.Errorf("%w: %w: session: train dim %d != query dim %d", match.ErrPrecondition, match.ErrInvalidInput, tdim, qdim)
	}

	gen, runCtx := s.start(ctx)
	defer s.release(gen)
	started := time.Now()
	s.logger.Info("recompute started", "generation", gen, "train", train.Len(), "query", query.Len(), "config", cfg.String())

	res, err := s.run(runCtx, gen, train, query, cfg)
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			err = fmt.Errorf("%w: generation %d: %v", ErrSuperseded, gen, err)
		}
		s.fail(gen, err)
		return nil, err
	}
	if s.beforePublish != nil {
		s.beforePublish(gen)
	}
	if err := s.publish(gen, res); err != nil {
		return nil, err
	}
	s.logger.Info("recompute finished", "generation", gen, "accepted", res.Accepted, "ranked", len(res.Ranked), "elapsed", time.Since(started))
	return res, nil
}

func (s *Session) run(ctx context.Context, gen uint64, train, query *descriptor.Features, cfg match.Configuration) (*Result, error) {
	if err := train.Validate(); err != nil {
		return nil, fmt.Errorf("session: train features: %w", err)
	}
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("session: query features: %w", err)
	}
	idx := s.newIndex(cfg)
	if err := idx.BuildContext(ctx, train.Descriptors); err != nil {
		return nil, fmt.Errorf("session: build index: %w", err)
	}
	s.transition(gen, Matching)

	pairs, err := match.MatchAll(ctx, idx, query.Descriptors, cfg.SearchBudget(), match.WithParallelism(s.parallelism))
	if err != nil {
		return nil, fmt.Errorf("session: match: %w", err)
	}
	accepted := match.Filter(pairs, cfg.RatioThreshold())
	return &Result{
		Generation:     gen,
		Config:         cfg,
		Ranked:         match.Rank(accepted, cfg.TopN()),
		Candidates:     len(pairs),
		Accepted:       len(accepted),
		TrainKeypoints: train.Keypoints,
		QueryKeypoints: query.Keypoints,
	}, nil
}

// start hands out a new generation, cancelling the run in flight.
func (s *Session) start(ctx context.Context) (uint64, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.logger.Debug("cancelled in-flight run", "generation", s.gen)
	}
	s.gen++
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = Building
	return s.gen, runCtx
}

// release frees the run context once gen is no longer the newest run.
func (s *Session) release(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) transition(gen uint64, to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.logger.Debug("state change", "generation", gen, "from", s.state, "to", to)
	s.state = to
}

func (s *Session) publish(gen uint64, res *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.published {
		s.logger.Debug("discarding stale result", "generation", gen, "published", s.published)
		return fmt.Errorf("%w: generation %d completed after generation %d", ErrSuperseded, gen, s.published)
	}
	s.published = gen
	s.result = res
	if gen == s.gen {
		s.state = Ready
	}
	return nil
}

func (s *Session) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, ErrSuperseded) {
		s.logger.Debug("recompute superseded", "generation", gen)
	} else {
		s.logger.Warn("recompute failed", "generation", gen, "error", err)
	}
	if gen != s.gen {
		return
	}
	if s.result != nil {
		s.state = Ready
	} else {
		s.state = Idle
	}
}

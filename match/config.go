package match

import "fmt"

// Defaults mirror the parameters commonly used for SIFT matching.
const (
	DefaultRatioThreshold = 0.75
	DefaultTreesCount     = 5
	DefaultSearchBudget   = 50
	DefaultTopN           = 15
	DefaultLineThickness  = 2
)

// Configuration is an immutable snapshot of matching parameters. Build one
// with NewConfiguration; the zero value is not valid.
type Configuration struct {
	ratioThreshold float64
	treesCount     int
	searchBudget   int
	topN           int
	lineThickness  int
	valid          bool
}

// Option sets a Configuration field.
type Option func(*Configuration)

// WithRatioThreshold sets the Lowe ratio, which must lie in (0, 1].
func WithRatioThreshold(r float64) Option {
	return func(c *Configuration) { c.ratioThreshold = r }
}

// WithTreesCount sets the number of randomized trees, at least 1.
func WithTreesCount(n int) Option {
	return func(c *Configuration) { c.treesCount = n }
}

// WithSearchBudget sets the per-query distance check budget, at least 1.
func WithSearchBudget(n int) Option {
	return func(c *Configuration) { c.searchBudget = n }
}

// WithTopN sets how many ranked matches are kept, at least 1.
func WithTopN(n int) Option {
	return func(c *Configuration) { c.topN = n }
}

// WithLineThickness sets the display hint passed to visualizers, at least 1.
func WithLineThickness(n int) Option {
	return func(c *Configuration) { c.lineThickness = n }
}

// NewConfiguration applies opts over the defaults and validates every field.
// Errors wrap ErrConfiguration.
func NewConfiguration(opts ...Option) (Configuration, error) {
	c := Configuration{
		ratioThreshold: DefaultRatioThreshold,
		treesCount:     DefaultTreesCount,
		searchBudget:   DefaultSearchBudget,
		topN:           DefaultTopN,
		lineThickness:  DefaultLineThickness,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return Configuration{}, err
	}
	c.valid = true
	return c, nil
}

// DefaultConfiguration returns the validated defaults.
func DefaultConfiguration() Configuration {
	c, _ := NewConfiguration()
	return c
}

func (c Configuration) validate() error {
	// written so that NaN fails too
	if !(c.ratioThreshold > 0 && c.ratioThreshold <= 1) {
		return fmt.Errorf("%w: ratio threshold %v outside (0, 1]", ErrConfiguration, c.ratioThreshold)
	}
	if c.treesCount < 1 {
		return fmt.Errorf("%w: trees count %d < 1", ErrConfiguration, c.treesCount)
	}
	if c.searchBudget < 1 {
		return fmt.Errorf("%w: search budget %d < 1", ErrConfiguration, c.searchBudget)
	}
	if c.topN < 1 {
		return fmt.Errorf("%w: top N %d < 1", ErrConfiguration, c.topN)
	}
	if c.lineThickness < 1 {
		return fmt.Errorf("%w: line thickness %d < 1", ErrConfiguration, c.lineThickness)
	}
	return nil
}

// Valid reports whether c was produced by NewConfiguration.
func (c Configuration) Valid() bool { return c.valid }

// RatioThreshold returns the Lowe ratio.
func (c Configuration) RatioThreshold() float64 { return c.ratioThreshold }

// TreesCount returns the number of randomized trees.
func (c Configuration) TreesCount() int { return c.treesCount }

// SearchBudget returns the per-query distance check budget.
func (c Configuration) SearchBudget() int { return c.searchBudget }

// TopN returns the ranked list length bound.
func (c Configuration) TopN() int { return c.topN }

// LineThickness returns the display hint.
func (c Configuration) LineThickness() int { return c.lineThickness }

// With returns a new validated configuration with opts applied over c.
func (c Configuration) With(opts ...Option) (Configuration, error) {
	next := c
	for _, opt := range opts {
		opt(&next)
	}
	if err := next.validate(); err != nil {
		return Configuration{}, err
	}
	next.valid = true
	return next, nil
}

func (c Configuration) String() string {
	return fmt.Sprintf("ratio=%v trees=%d budget=%d topN=%d thickness=%d",
		c.ratioThreshold, c.treesCount, c.searchBudget, c.topN, c.lineThickness)
}

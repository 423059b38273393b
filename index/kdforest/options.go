package kdforest

import "runtime"

const (
	// DefaultTrees matches the tree count of typical SIFT matching setups.
	DefaultTrees = 5
	// DefaultSeed is used when no seed option is given.
	DefaultSeed int64 = 1
)

type options struct {
	trees       int
	seed        int64
	leafSize    int
	sampleSize  int
	topDims     int
	parallelism int
}

func defaultOptions() options {
	return options{
		trees:       DefaultTrees,
		seed:        DefaultSeed,
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// Option configures an Index.
type Option func(*options)

// WithTrees sets the number of randomized trees. Values below 1 are rejected
// by Build.
func WithTrees(n int) Option {
	return func(o *options) { o.trees = n }
}

// WithSeed sets the seed all tree randomness derives from.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLeafSize sets the maximum number of descriptors held by a leaf.
func WithLeafSize(n int) Option {
	return func(o *options) { o.leafSize = n }
}

// WithSampleSize bounds the number of descriptors used to estimate variance
// when choosing a split.
func WithSampleSize(n int) Option {
	return func(o *options) { o.sampleSize = n }
}

// WithTopDims sets how many of the highest-variance dimensions a split
// dimension is drawn from.
func WithTopDims(n int) Option {
	return func(o *options) { o.topDims = n }
}

// WithBuildParallelism bounds the number of trees built concurrently.
func WithBuildParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

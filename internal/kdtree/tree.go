package kdtree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/viant/descmatch/descriptor"
)

const (
	// DefaultLeafSize is the maximum number of positions held by a leaf.
	DefaultLeafSize = 1
	// DefaultSampleSize bounds the number of points used to estimate
	// per-dimension variance at each split.
	DefaultSampleSize = 100
	// DefaultTopDims is the number of highest-variance dimensions a split
	// dimension is drawn from.
	DefaultTopDims = 5
)

// Options controls tree construction.
type Options struct {
	LeafSize   int
	SampleSize int
	TopDims    int
}

func (o *Options) setDefaults() {
	if o.LeafSize < 1 {
		o.LeafSize = DefaultLeafSize
	}
	if o.SampleSize < 2 {
		o.SampleSize = DefaultSampleSize
	}
	if o.TopDims < 1 {
		o.TopDims = DefaultTopDims
	}
}

// Tree is a randomized KD tree over the positions of a descriptor set. The
// tree references positions only; descriptor values stay in the set.
type Tree struct {
	root  *Node
	size  int
	depth int
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of indexed positions.
func (t *Tree) Len() int { return t.size }

// Depth returns the maximum root-to-leaf depth.
func (t *Tree) Depth() int { return t.depth }

// Build constructs a tree over data. Randomness comes only from rng, so the
// same seed and data always produce the same tree. data must be non-empty
// and uniform in dimension; callers validate.
func Build(data descriptor.Set, rng *rand.Rand, opts Options) *Tree {
	opts.setDefaults()
	if len(data) == 0 {
		return &Tree{}
	}
	positions := make([]int32, len(data))
	for i := range positions {
		positions[i] = int32(i)
	}
	rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	b := &builder{
		data:      data,
		rng:       rng,
		opts:      opts,
		column:    make([]float64, 0, opts.SampleSize),
		means:     make([]float64, data.Dim()),
		variances: make([]float64, data.Dim()),
		order:     make([]int, data.Dim()),
	}
	t := &Tree{size: len(data)}
	t.root = b.divide(positions, 0, &t.depth)
	return t
}

type builder struct {
	data      descriptor.Set
	rng       *rand.Rand
	opts      Options
	column    []float64
	means     []float64
	variances []float64
	order     []int
}

func (b *builder) divide(positions []int32, depth int, maxDepth *int) *Node {
	if depth > *maxDepth {
		*maxDepth = depth
	}
	if len(positions) <= b.opts.LeafSize {
		return &Node{points: positions}
	}
	dim, cut := b.selectSplit(positions)
	lim := partition(b.data, positions, dim, cut)
	if lim == 0 || lim == len(positions) {
		// every sampled value sits on one side of the cut; fall back to a
		// positional split so recursion always makes progress
		lim = len(positions) / 2
	}
	return &Node{
		dim:   dim,
		cut:   cut,
		left:  b.divide(positions[:lim], depth+1, maxDepth),
		right: b.divide(positions[lim:], depth+1, maxDepth),
	}
}

// selectSplit picks a dimension at random among the TopDims dimensions with
// the highest variance over a sample of positions and cuts at its mean.
func (b *builder) selectSplit(positions []int32) (int, float32) {
	sample := positions
	if len(sample) > b.opts.SampleSize {
		sample = sample[:b.opts.SampleSize]
	}
	for d := range b.means {
		b.column = b.column[:0]
		for _, p := range sample {
			b.column = append(b.column, float64(b.data[p][d]))
		}
		mean, variance := stat.MeanVariance(b.column, nil)
		if math.IsNaN(variance) {
			variance = 0
		}
		b.means[d] = mean
		b.variances[d] = variance
		b.order[d] = d
	}
	sort.SliceStable(b.order, func(i, j int) bool {
		return b.variances[b.order[i]] > b.variances[b.order[j]]
	})
	top := b.opts.TopDims
	if top > len(b.order) {
		top = len(b.order)
	}
	dim := b.order[b.rng.IntN(top)]
	return dim, float32(b.means[dim])
}

// partition moves positions whose value at dim is below cut to the front and
// returns their count.
func partition(data descriptor.Set, positions []int32, dim int, cut float32) int {
	lim := 0
	for j, p := range positions {
		if data[p][dim] < cut {
			positions[lim], positions[j] = positions[j], positions[lim]
			lim++
		}
	}
	return lim
}

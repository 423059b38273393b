package kdtree

import (
	"container/heap"
	"sort"

	"github.com/viant/descmatch/descriptor"
)

// Search runs a best-first approximate kNN search across all trees, which
// must have been built over data. One branch queue is shared by every tree.
//
// budget is the number of distinct descriptors whose distance is computed.
// Once it is spent the search stops as soon as k candidates are held, so the
// result always has min(k, len(data)) entries. Results are ordered by
// ascending distance, then ascending index.
func Search(trees []*Tree, data descriptor.Set, query descriptor.Descriptor, k, budget int) []Neighbor {
	if k <= 0 || len(data) == 0 {
		return nil
	}
	if k > len(data) {
		k = len(data)
	}
	s := &searcher{
		data:    data,
		query:   query,
		k:       k,
		budget:  budget,
		visited: make([]bool, len(data)),
		results: make(Neighbors, 0, k),
	}
	for _, t := range trees {
		if t != nil && t.root != nil {
			s.descend(t.root, 0)
		}
	}
	for s.queue.Len() > 0 && (s.checks < s.budget || !s.full()) {
		b := heap.Pop(&s.queue).(branch)
		if s.full() && b.bound > s.worstSq() {
			break
		}
		s.descend(b.node, b.bound)
	}
	out := make([]Neighbor, len(s.results))
	copy(out, s.results)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

type searcher struct {
	data    descriptor.Set
	query   descriptor.Descriptor
	k       int
	budget  int
	checks  int
	visited []bool
	results Neighbors
	queue   branchQueue
}

func (s *searcher) full() bool { return len(s.results) >= s.k }

func (s *searcher) worstSq() float32 {
	w := s.results[0].Distance
	return w * w
}

// descend follows the near side down to a leaf, queueing each far side with
// its accumulated bound, then checks the leaf.
func (s *searcher) descend(n *Node, bound float32) {
	if s.full() && bound > s.worstSq() {
		return
	}
	for !n.IsLeaf() {
		diff := s.query[n.dim] - n.cut
		near, far := n.left, n.right
		if diff >= 0 {
			near, far = n.right, n.left
		}
		farBound := bound + diff*diff
		if !s.full() || farBound <= s.worstSq() {
			heap.Push(&s.queue, branch{node: far, bound: farBound})
		}
		n = near
	}
	for _, p := range n.points {
		if s.visited[p] {
			continue
		}
		if s.checks >= s.budget && s.full() {
			return
		}
		s.visited[p] = true
		s.checks++
		s.add(Neighbor{Index: p, Distance: descriptor.MustDistance(s.query, s.data[p])})
	}
}

func (s *searcher) add(c Neighbor) {
	if !s.full() {
		heap.Push(&s.results, c)
		return
	}
	if s.results.worse(c) {
		return
	}
	s.results[0] = c
	heap.Fix(&s.results, 0)
}

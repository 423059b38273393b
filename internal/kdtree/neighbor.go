package kdtree

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	Index    int32
	Distance float32
}

// Neighbors implements heap.Interface sorted by descending distance (max-heap).
// Among equal distances the larger index sits on top, so it is evicted first.
type Neighbors []Neighbor

func (h Neighbors) Len() int { return len(h) }
func (h Neighbors) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance > h[j].Distance
	}
	return h[i].Index > h[j].Index
}
func (h Neighbors) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *Neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *Neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// worse reports whether candidate c would not displace the current top.
func (h Neighbors) worse(c Neighbor) bool {
	top := h[0]
	if c.Distance != top.Distance {
		return c.Distance > top.Distance
	}
	return c.Index >= top.Index
}

package kdtree

// branch is an unexplored subtree together with the squared lower bound of
// its distance to the query.
type branch struct {
	node  *Node
	bound float32
}

// branchQueue is a min-heap of branches ordered by bound. It is shared across
// all trees of a forest so the most promising subtree of any tree is explored
// next.
type branchQueue []branch

func (q branchQueue) Len() int            { return len(q) }
func (q branchQueue) Less(i, j int) bool  { return q[i].bound < q[j].bound }
func (q branchQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *branchQueue) Push(x interface{}) { *q = append(*q, x.(branch)) }
func (q *branchQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

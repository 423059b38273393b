package kdtree

// Node is a KD tree node. Leaves hold descriptor positions; internal nodes
// split on a single dimension at cut: values < cut go left.
type Node struct {
	points []int32
	dim    int
	cut    float32
	left   *Node
	right  *Node
}

// IsLeaf reports whether the node holds positions.
func (n *Node) IsLeaf() bool { return n.left == nil && n.right == nil }

// Points returns the positions held by a leaf.
func (n *Node) Points() []int32 { return n.points }

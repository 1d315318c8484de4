package kdtree

import "fmt"

// Stats summarises the shape of a Tree.
type Stats struct {
	Count  int // stored records
	Height int // nodes on the longest root-to-leaf path, 0 when empty
	Leaves int // nodes without children
}

// String returns a string representation of the Stats.
func (s Stats) String() string {
	return fmt.Sprintf("count=%d height=%d leaves=%d", s.Count, s.Height, s.Leaves)
}

// Stats returns statistics about the tree.
func (t *Tree[T]) Stats() Stats {
	s := Stats{Count: len(t.nodes), Height: t.Height()}
	for i := range t.nodes {
		if t.nodes[i].left == noChild && t.nodes[i].right == noChild {
			s.Leaves++
		}
	}
	return s
}

// Height returns the height of the tree.
func (t *Tree[T]) Height() int {
	return t.height(t.root)
}

func (t *Tree[T]) height(n int32) int {
	if n == noChild {
		return 0
	}
	return 1 + max(t.height(t.nodes[n].left), t.height(t.nodes[n].right))
}

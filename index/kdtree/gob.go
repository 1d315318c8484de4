package kdtree

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/kdmap/model"
)

// ErrCorrupt is returned when decoded tree data is structurally invalid.
var ErrCorrupt = errors.New("kdtree: corrupt encoding")

type gobNode[T any] struct {
	Record model.Record[T]
	Left   int32
	Right  int32
}

type gobTree[T any] struct {
	Root  int32
	Nodes []gobNode[T]
}

// GobEncode method for Tree. The encoded form keeps the exact tree shape.
func (t *Tree[T]) GobEncode() ([]byte, error) {
	g := gobTree[T]{Root: t.root, Nodes: make([]gobNode[T], len(t.nodes))}
	for i, n := range t.nodes {
		g.Nodes[i] = gobNode[T]{Record: n.rec, Left: n.left, Right: n.right}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode method for Tree.
//
// The decoded arena must form exactly one tree reachable from the root,
// with children after their parent and records on the correct side of
// every split. Anything else is rejected with ErrCorrupt.
func (t *Tree[T]) GobDecode(data []byte) error {
	var g gobTree[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}

	nodes := make([]node[T], len(g.Nodes))
	for i, gn := range g.Nodes {
		nodes[i] = node[T]{rec: gn.Record, left: gn.Left, right: gn.Right}
	}
	if err := check(nodes, g.Root); err != nil {
		return err
	}

	t.root = g.Root
	t.nodes = nodes
	return nil
}

// region is the rectangle a subtree's records must lie in.
type region struct {
	lo, hi [2]float64
}

func (r region) contains(p model.Point) bool {
	return p.X >= r.lo[0] && p.X <= r.hi[0] && p.Y >= r.lo[1] && p.Y <= r.hi[1]
}

// check walks the arena from root and verifies every node is reached once,
// after its parent, inside the region its ancestors' splits allow.
func check[T any](nodes []node[T], root int32) error {
	n := int32(len(nodes))
	if root == noChild {
		if n > 0 {
			return fmt.Errorf("%w: no root for %d nodes", ErrCorrupt, n)
		}
		return nil
	}
	if root < 0 || root >= n {
		return fmt.Errorf("%w: root %d of %d nodes", ErrCorrupt, root, n)
	}

	type frame struct {
		id     int32
		parent int32
		depth  int
		region region
	}

	inf := math.Inf(1)
	visited := make([]bool, n)
	seen := int32(0)
	stack := []frame{{id: root, parent: -1, region: region{lo: [2]float64{-inf, -inf}, hi: [2]float64{inf, inf}}}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.id < 0 || f.id >= n || f.id <= f.parent {
			return fmt.Errorf("%w: node %d has child %d", ErrCorrupt, f.parent, f.id)
		}
		if visited[f.id] {
			return fmt.Errorf("%w: node %d is reachable twice", ErrCorrupt, f.id)
		}
		visited[f.id] = true
		seen++

		nd := &nodes[f.id]
		p := model.Point{X: nd.rec.X, Y: nd.rec.Y}
		if !f.region.contains(p) {
			return fmt.Errorf("%w: node %d at %v breaks the split order", ErrCorrupt, f.id, p)
		}

		axis := model.AxisAt(f.depth)
		split := nd.rec.Coord(axis)
		if nd.left != noChild {
			r := f.region
			r.hi[axis] = split
			stack = append(stack, frame{id: nd.left, parent: f.id, depth: f.depth + 1, region: r})
		}
		if nd.right != noChild {
			r := f.region
			r.lo[axis] = split
			stack = append(stack, frame{id: nd.right, parent: f.id, depth: f.depth + 1, region: r})
		}
	}

	if seen != n {
		return fmt.Errorf("%w: %d of %d nodes unreachable from the root", ErrCorrupt, n-seen, n)
	}
	return nil
}

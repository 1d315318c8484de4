// Package kdtree provides a static 2-d k-d tree with nearest-neighbour search.
//
// A Tree is built once by repeated median selection on alternating axes
// (x at even depths, y at odd depths) and is immutable afterwards. Queries
// never mutate it, so a built Tree may be shared by any number of
// goroutines without locking. Construction itself mutates its input and
// must finish before the Tree is published.
package kdtree

import (
	"cmp"
	"iter"
	"slices"

	"github.com/hupe1980/kdmap/index"
	"github.com/hupe1980/kdmap/model"
)

// Compile-time check to ensure Tree satisfies the index interface.
var _ index.Index[struct{}] = (*Tree[struct{}])(nil)

const noChild int32 = -1

// node is an arena slot. Children are arena handles, noChild when absent.
type node[T any] struct {
	rec   model.Record[T]
	left  int32
	right int32
}

// Tree is a balanced median-split k-d tree over model.Record values.
//
// Nodes are stored in an arena in pre-order; a node's id is its arena
// position and stays stable for the lifetime of the Tree.
type Tree[T any] struct {
	nodes []node[T]
	root  int32
}

// Build constructs a Tree from records.
//
// Build takes ownership of records: subranges are sorted in place while
// splitting. Use New to leave the caller's slice untouched. An empty input
// yields an empty Tree. Build never fails.
func Build[T any](records []model.Record[T]) *Tree[T] {
	t := &Tree[T]{
		nodes: make([]node[T], 0, len(records)),
		root:  noChild,
	}
	t.root = t.build(records, 0, 0, len(records))
	return t
}

// New constructs a Tree from a private copy of records.
func New[T any](records []model.Record[T]) *Tree[T] {
	return Build(slices.Clone(records))
}

// build splits records[left:right] at depth and returns the subtree root.
func (t *Tree[T]) build(records []model.Record[T], depth, left, right int) int32 {
	if left >= right {
		return noChild
	}

	axis := model.AxisAt(depth)
	sortByAxis(records[left:right], axis)

	med := left + (right-left)/2
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, node[T]{rec: records[med], left: noChild, right: noChild})

	l := t.build(records, depth+1, left, med)
	r := t.build(records, depth+1, med+1, right)
	t.nodes[id].left = l
	t.nodes[id].right = r

	return id
}

// sortByAxis orders records ascending on one axis.
// The sort is stable so equal coordinates keep their relative order.
func sortByAxis[T any](records []model.Record[T], axis model.Axis) {
	slices.SortStableFunc(records, func(a, b model.Record[T]) int {
		return cmp.Compare(a.Coord(axis), b.Coord(axis))
	})
}

// Len returns the number of stored records.
func (t *Tree[T]) Len() int {
	return len(t.nodes)
}

// Empty reports whether the tree holds no records.
func (t *Tree[T]) Empty() bool {
	return t.root == noChild
}

// Get returns the record stored under id.
func (t *Tree[T]) Get(id uint32) (model.Record[T], error) {
	if int(id) >= len(t.nodes) {
		var zero model.Record[T]
		return zero, &index.ErrNodeNotFound{ID: id}
	}
	return t.nodes[id].rec, nil
}

// All iterates over every node id and record in pre-order.
func (t *Tree[T]) All() iter.Seq2[uint32, model.Record[T]] {
	return func(yield func(uint32, model.Record[T]) bool) {
		for i := range t.nodes {
			if !yield(uint32(i), t.nodes[i].rec) {
				return
			}
		}
	}
}

// Records returns a copy of every stored record in pre-order.
func (t *Tree[T]) Records() []model.Record[T] {
	out := make([]model.Record[T], len(t.nodes))
	for i := range t.nodes {
		out[i] = t.nodes[i].rec
	}
	return out
}

package kdtree

import (
	"math"
	"slices"

	"github.com/hupe1980/kdmap/distance"
	"github.com/hupe1980/kdmap/index"
	"github.com/hupe1980/kdmap/internal/queue"
	"github.com/hupe1980/kdmap/model"
)

// Nearest returns the stored record closest to (x, y) by squared Euclidean
// distance. It reports false iff the tree is empty.
//
// Among records at the same minimal distance the result is deterministic
// for this tree but unspecified otherwise.
func (t *Tree[T]) Nearest(x, y float64) (model.Record[T], bool) {
	res, ok := t.NearestFiltered(x, y, nil)
	return res.Record, ok
}

// NearestFiltered returns the closest record whose id is accepted by filter.
// It reports false when no record is accepted. A nil filter accepts all.
func (t *Tree[T]) NearestFiltered(x, y float64, filter index.Filter) (index.SearchResult[T], bool) {
	q := model.Point{X: x, Y: y}
	c := t.nearest(t.root, q, 0, filter)
	if c.id == noChild {
		return index.SearchResult[T]{}, false
	}
	return index.SearchResult[T]{
		ID:       uint32(c.id),
		Record:   t.nodes[c.id].rec,
		Distance: c.dist,
	}, true
}

// candidate is a node found during search. id is noChild when nothing has
// been found, in which case dist is +Inf.
type candidate struct {
	id   int32
	dist float64
}

var none = candidate{id: noChild, dist: math.Inf(1)}

// closer returns whichever of i and j is nearer to the query.
// Only a strictly smaller distance lets i win, so j is kept on ties.
func closer(i, j candidate) candidate {
	if i.id == noChild {
		return j
	}
	if j.id == noChild {
		return i
	}
	if i.dist < j.dist {
		return i
	}
	return j
}

func (t *Tree[T]) nearest(n int32, q model.Point, depth int, filter index.Filter) candidate {
	if n == noChild {
		return none
	}

	nd := &t.nodes[n]
	axis := model.AxisAt(depth)
	target := q.Coord(axis)
	current := nd.rec.Coord(axis)

	near, far := nd.right, nd.left
	if target < current {
		near, far = nd.left, nd.right
	}

	best := t.nearest(near, q, depth+1, filter)
	if filter.Accepts(uint32(n)) {
		here := candidate{id: n, dist: distance.SquaredL2(q.X, q.Y, nd.rec.X, nd.rec.Y)}
		// The current node wins a tie against a near-side find.
		best = closer(best, here)
	}

	// radius is +Inf until a candidate exists, so the far side is always
	// searched in that case.
	if best.dist >= distance.SquaredAxis(target, current) {
		// The best so far wins a tie against a far-side find.
		best = closer(t.nearest(far, q, depth+1, filter), best)
	}

	return best
}

// KNearest returns up to k records ordered by ascending distance, ties by
// node id. Only records accepted by filter are considered.
func (t *Tree[T]) KNearest(x, y float64, k int, filter index.Filter) ([]index.SearchResult[T], error) {
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}

	pq := queue.NewMax(min(k, len(t.nodes)))
	t.knearest(t.root, model.Point{X: x, Y: y}, 0, k, filter, pq)

	return t.results(pq.Drain()), nil
}

func (t *Tree[T]) knearest(n int32, q model.Point, depth, k int, filter index.Filter, pq *queue.PriorityQueue) {
	if n == noChild {
		return
	}

	nd := &t.nodes[n]
	axis := model.AxisAt(depth)
	target := q.Coord(axis)
	current := nd.rec.Coord(axis)

	near, far := nd.right, nd.left
	if target < current {
		near, far = nd.left, nd.right
	}

	t.knearest(near, q, depth+1, k, filter, pq)

	if filter.Accepts(uint32(n)) {
		item := queue.Item{Node: uint32(n), Distance: distance.SquaredL2(q.X, q.Y, nd.rec.X, nd.rec.Y)}
		if pq.Len() < k {
			pq.Push(item)
		} else if worst, _ := pq.Top(); queue.Less(item, worst) {
			pq.ReplaceTop(item)
		}
	}

	if worst, _ := pq.Top(); pq.Len() < k || distance.SquaredAxis(target, current) <= worst.Distance {
		t.knearest(far, q, depth+1, k, filter, pq)
	}
}

// Within returns every record whose distance to (x, y) is at most radius,
// ordered by ascending distance, ties by node id.
func (t *Tree[T]) Within(x, y, radius float64, filter index.Filter) ([]index.SearchResult[T], error) {
	r2, err := index.ValidateRadius(radius)
	if err != nil {
		return nil, err
	}

	var items []queue.Item
	items = t.within(t.root, model.Point{X: x, Y: y}, 0, r2, filter, items)
	slices.SortFunc(items, func(a, b queue.Item) int {
		if queue.Less(a, b) {
			return -1
		}
		if queue.Less(b, a) {
			return 1
		}
		return 0
	})

	return t.results(items), nil
}

func (t *Tree[T]) within(n int32, q model.Point, depth int, r2 float64, filter index.Filter, items []queue.Item) []queue.Item {
	if n == noChild {
		return items
	}

	nd := &t.nodes[n]
	axis := model.AxisAt(depth)
	target := q.Coord(axis)
	current := nd.rec.Coord(axis)

	near, far := nd.right, nd.left
	if target < current {
		near, far = nd.left, nd.right
	}

	items = t.within(near, q, depth+1, r2, filter, items)

	if d := distance.SquaredL2(q.X, q.Y, nd.rec.X, nd.rec.Y); d <= r2 && filter.Accepts(uint32(n)) {
		items = append(items, queue.Item{Node: uint32(n), Distance: d})
	}

	if distance.SquaredAxis(target, current) <= r2 {
		items = t.within(far, q, depth+1, r2, filter, items)
	}

	return items
}

func (t *Tree[T]) results(items []queue.Item) []index.SearchResult[T] {
	out := make([]index.SearchResult[T], len(items))
	for i, it := range items {
		out[i] = index.SearchResult[T]{
			ID:       it.Node,
			Record:   t.nodes[it.Node].rec,
			Distance: it.Distance,
		}
	}
	return out
}

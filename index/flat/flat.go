// Package flat provides an exact, linear-scan point index.
//
// Flat answers every query by visiting all records. It is the ground truth
// the k-d tree is tested against and is perfectly adequate for small maps.
package flat

import (
	"iter"
	"math"
	"slices"

	"github.com/hupe1980/kdmap/distance"
	"github.com/hupe1980/kdmap/index"
	"github.com/hupe1980/kdmap/internal/queue"
	"github.com/hupe1980/kdmap/model"
)

// Compile-time check to ensure Flat satisfies the index interface.
var _ index.Index[struct{}] = (*Flat[struct{}])(nil)

// Flat is an immutable slice of records searched by brute force.
// Node ids are positions in the slice passed to New.
type Flat[T any] struct {
	records []model.Record[T]
}

// New creates a Flat index over a private copy of records.
func New[T any](records []model.Record[T]) *Flat[T] {
	return &Flat[T]{records: slices.Clone(records)}
}

// Len returns the number of stored records.
func (f *Flat[T]) Len() int { return len(f.records) }

// Get returns the record stored under id.
func (f *Flat[T]) Get(id uint32) (model.Record[T], error) {
	if int(id) >= len(f.records) {
		var zero model.Record[T]
		return zero, &index.ErrNodeNotFound{ID: id}
	}
	return f.records[id], nil
}

// Nearest returns the closest record. On ties the later record wins.
func (f *Flat[T]) Nearest(x, y float64) (model.Record[T], bool) {
	res, ok := f.NearestFiltered(x, y, nil)
	return res.Record, ok
}

// NearestFiltered returns the closest record accepted by filter.
func (f *Flat[T]) NearestFiltered(x, y float64, filter index.Filter) (index.SearchResult[T], bool) {
	best := -1
	bestDist := math.Inf(1)
	for i := range f.records {
		if !filter.Accepts(uint32(i)) {
			continue
		}
		d := distance.SquaredL2(x, y, f.records[i].X, f.records[i].Y)
		if best < 0 || !(bestDist < d) {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return index.SearchResult[T]{}, false
	}
	return index.SearchResult[T]{ID: uint32(best), Record: f.records[best], Distance: bestDist}, true
}

// KNearest returns up to k records ordered by ascending distance, ties by id.
func (f *Flat[T]) KNearest(x, y float64, k int, filter index.Filter) ([]index.SearchResult[T], error) {
	if err := index.ValidateK(k); err != nil {
		return nil, err
	}

	pq := queue.NewMax(min(k, len(f.records)))
	for i := range f.records {
		if !filter.Accepts(uint32(i)) {
			continue
		}
		item := queue.Item{Node: uint32(i), Distance: distance.SquaredL2(x, y, f.records[i].X, f.records[i].Y)}
		if pq.Len() < k {
			pq.Push(item)
		} else if worst, _ := pq.Top(); queue.Less(item, worst) {
			pq.ReplaceTop(item)
		}
	}

	return f.results(pq.Drain()), nil
}

// Within returns every record at most radius away, ascending, ties by id.
func (f *Flat[T]) Within(x, y, radius float64, filter index.Filter) ([]index.SearchResult[T], error) {
	r2, err := index.ValidateRadius(radius)
	if err != nil {
		return nil, err
	}

	var items []queue.Item
	for i := range f.records {
		d := distance.SquaredL2(x, y, f.records[i].X, f.records[i].Y)
		if d <= r2 && filter.Accepts(uint32(i)) {
			items = append(items, queue.Item{Node: uint32(i), Distance: d})
		}
	}
	// Items were appended in id order, so a stable sort by distance keeps ties by id.
	slices.SortStableFunc(items, func(a, b queue.Item) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	return f.results(items), nil
}

// All iterates over every id and record in insertion order.
func (f *Flat[T]) All() iter.Seq2[uint32, model.Record[T]] {
	return func(yield func(uint32, model.Record[T]) bool) {
		for i, r := range f.records {
			if !yield(uint32(i), r) {
				return
			}
		}
	}
}

func (f *Flat[T]) results(items []queue.Item) []index.SearchResult[T] {
	out := make([]index.SearchResult[T], len(items))
	for i, it := range items {
		out[i] = index.SearchResult[T]{ID: it.Node, Record: f.records[it.Node], Distance: it.Distance}
	}
	return out
}

package index

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/kdmap/model"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidRadius is returned when a search radius is negative or NaN.
	ErrInvalidRadius = errors.New("radius must be a non-negative number")
)

// ErrNodeNotFound is returned when a node id does not exist in the index.
type ErrNodeNotFound struct {
	ID uint32
}

// Error returns the error message for a missing node.
func (e *ErrNodeNotFound) Error() string {
	return fmt.Sprintf("node not found: %d", e.ID)
}

// Filter reports whether the node with the given id may be returned.
// A nil Filter accepts every node.
type Filter func(id uint32) bool

// Accepts reports whether f accepts id.
func (f Filter) Accepts(id uint32) bool {
	return f == nil || f(id)
}

// SearchResult represents a search result.
type SearchResult[T any] struct {
	// ID is the index-local node id of the result.
	ID uint32

	// Record is the stored record.
	Record model.Record[T]

	// Distance is the squared distance between the query and the record.
	Distance float64
}

// Index is a static 2-d point index.
type Index[T any] interface {
	// Len returns the number of stored records.
	Len() int

	// Get returns the record stored under id.
	Get(id uint32) (model.Record[T], error)

	// Nearest returns the stored record closest to (x, y).
	// It reports false iff the index is empty.
	Nearest(x, y float64) (model.Record[T], bool)

	// NearestFiltered returns the closest record accepted by filter.
	NearestFiltered(x, y float64, filter Filter) (SearchResult[T], bool)

	// KNearest returns up to k records ordered by ascending distance.
	KNearest(x, y float64, k int, filter Filter) ([]SearchResult[T], error)

	// Within returns every record whose distance to (x, y) is at most radius,
	// ordered by ascending distance.
	Within(x, y, radius float64, filter Filter) ([]SearchResult[T], error)

	// All iterates over every node id and record.
	All() iter.Seq2[uint32, model.Record[T]]
}

// ValidateK checks a neighbour count.
func ValidateK(k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	return nil
}

// ValidateRadius checks a search radius and returns its square.
func ValidateRadius(radius float64) (float64, error) {
	if !(radius >= 0) {
		return 0, ErrInvalidRadius
	}
	return radius * radius, nil
}

package kdmap

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdmap/blobstore"
	"github.com/hupe1980/kdmap/index"
	"github.com/hupe1980/kdmap/index/kdtree"
	"github.com/hupe1980/kdmap/mapfile"
)

var (
	// ErrNotFound is returned when a map file, tile or tile type does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyMap is returned by nearest queries on a map without tiles.
	ErrEmptyMap = errors.New("map is empty")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidRadius is returned when a radius is negative or NaN.
	ErrInvalidRadius = errors.New("radius must be a non-negative number")
)

// ErrInvalidMap indicates that a map document or snapshot was rejected.
//
// The original underlying error can be accessed via errors.Unwrap; for
// validation failures it matches mapfile.ErrInvalidTile.
type ErrInvalidMap struct {
	Name  string
	cause error
}

func (e *ErrInvalidMap) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid map: %v", e.cause)
	}
	return fmt.Sprintf("invalid map %s: %v", e.Name, e.cause)
}

func (e *ErrInvalidMap) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var nnf *index.ErrNodeNotFound
	if errors.As(err, &nnf) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Argument normalization.
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, index.ErrInvalidRadius) {
		return fmt.Errorf("%w: %w", ErrInvalidRadius, err)
	}

	if errors.Is(err, mapfile.ErrInvalidTile) || errors.Is(err, kdtree.ErrCorrupt) {
		return &ErrInvalidMap{cause: err}
	}

	return err
}

package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/kdmap/distance"
	"github.com/hupe1980/kdmap/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64Range returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) Float64Range(minVal, maxVal float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float64()*(maxVal-minVal)
}

// Point returns a random point with both coordinates in [minVal, maxVal).
func (r *RNG) Point(minVal, maxVal float64) model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	return model.Point{
		X: minVal + r.rand.Float64()*span,
		Y: minVal + r.rand.Float64()*span,
	}
}

// UniformRecords generates num records with coordinates in [minVal, maxVal).
// IDs are "r0", "r1", ... and Data holds the generation index.
func (r *RNG) UniformRecords(num int, minVal, maxVal float64) []model.Record[int] {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	recs := make([]model.Record[int], num)
	for i := range recs {
		recs[i] = model.Record[int]{
			ID:   fmt.Sprintf("r%d", i),
			X:    minVal + r.rand.Float64()*span,
			Y:    minVal + r.rand.Float64()*span,
			Data: i,
		}
	}
	return recs
}

// GridRecords generates num records on the integer grid [0, side)².
// Small sides produce many duplicate coordinates and equal distances.
func (r *RNG) GridRecords(num, side int) []model.Record[int] {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := make([]model.Record[int], num)
	for i := range recs {
		recs[i] = model.Record[int]{
			ID:   fmt.Sprintf("g%d", i),
			X:    float64(r.rand.Intn(side)),
			Y:    float64(r.rand.Intn(side)),
			Data: i,
		}
	}
	return recs
}

// CollinearRecords generates num records sharing one x coordinate.
func (r *RNG) CollinearRecords(num int, x float64) []model.Record[int] {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := make([]model.Record[int], num)
	for i := range recs {
		recs[i] = model.Record[int]{
			ID:   fmt.Sprintf("c%d", i),
			X:    x,
			Y:    r.rand.Float64() * 100,
			Data: i,
		}
	}
	return recs
}

// MinSquaredDistance returns the smallest squared distance from (x, y) to
// any record by linear scan. It reports false for an empty slice.
func MinSquaredDistance[T any](recs []model.Record[T], x, y float64) (float64, bool) {
	if len(recs) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for _, rec := range recs {
		best = min(best, distance.SquaredL2(x, y, rec.X, rec.Y))
	}
	return best, true
}

// SortedSquaredDistances returns every squared distance from (x, y) in
// ascending order.
func SortedSquaredDistances[T any](recs []model.Record[T], x, y float64) []float64 {
	out := make([]float64, len(recs))
	for i, rec := range recs {
		out[i] = distance.SquaredL2(x, y, rec.X, rec.Y)
	}
	slices.Sort(out)
	return out
}

// IDs returns the sorted IDs of recs.
func IDs[T any](recs []model.Record[T]) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.ID
	}
	slices.Sort(out)
	return out
}

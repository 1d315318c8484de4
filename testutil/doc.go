// Package testutil provides testing utilities for kdmap.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random records and computing exact
// nearest neighbours by linear scan.
//
// # Random Record Generation
//
//	rng := testutil.NewRNG(seed)
//	recs := rng.UniformRecords(1000, -100, 100)  // continuous coordinates
//	grid := rng.GridRecords(1000, 8)             // integer grid, many ties
//
// # Exact Search (Ground Truth)
//
//	d, ok := testutil.MinSquaredDistance(recs, x, y)
package testutil

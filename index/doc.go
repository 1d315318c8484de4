// Package index provides point index interfaces and implementations.
//
// kdmap ships two index types:
//
//   - kdtree: a static, median-split 2-d tree with branch-and-bound search
//   - flat: an exact linear scan, the reference every tree result is checked against
//
// Both are built once from a slice of model.Record values and never
// change afterwards, so any number of goroutines may query them at once.
//
// # Distances
//
// All distances are squared Euclidean (see package distance).
//
// # Ties
//
// When several records share the minimal distance, which one Nearest
// returns is deterministic for a given index but is otherwise unspecified
// for callers. KNearest and Within break ties by node id.
package index

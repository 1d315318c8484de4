// Package distance provides the planar distance functions used by kdmap indexes.
//
// Indexes compare squared Euclidean distances only. Squaring preserves the
// ordering of true distances and avoids a square root per comparison, but
// a squared value must never be compared against an unsquared one.
package distance

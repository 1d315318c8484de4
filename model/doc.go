// Package model defines core types used throughout kdmap.
//
// # Data Types
//
//   - Record: an identified 2-d point carrying opaque caller data
//   - Point: a bare query coordinate pair
//   - Bounds: an axis-aligned rectangle (map borders)
//
// Records are plain values. The index reads only ID, X and Y; Data is
// carried through untouched so callers get it back alongside results.
package model

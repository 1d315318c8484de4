package model

import (
	"fmt"
	"math"
)

// Axis identifies a coordinate of a 2-d point.
type Axis int

const (
	// AxisX is the first coordinate.
	AxisX Axis = iota
	// AxisY is the second coordinate.
	AxisY
)

// Dimensions is the number of axes of every point in kdmap.
const Dimensions = 2

// AxisAt returns the splitting axis used at the given tree depth.
func AxisAt(depth int) Axis {
	return Axis(depth % Dimensions)
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Point is a location in the plane.
type Point struct {
	X float64
	Y float64
}

// Coord returns the value of p on axis a.
func (p Point) Coord(a Axis) float64 {
	if a == AxisY {
		return p.Y
	}
	return p.X
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Record is a point-located entry stored in an index.
//
// X and Y must be finite. Data is never inspected by the index.
type Record[T any] struct {
	ID   string
	X    float64
	Y    float64
	Data T
}

// NewRecord creates a Record.
func NewRecord[T any](id string, x, y float64, data T) Record[T] {
	return Record[T]{ID: id, X: x, Y: y, Data: data}
}

// Point returns the location of the record.
func (r Record[T]) Point() Point {
	return Point{X: r.X, Y: r.Y}
}

// Coord returns the value of r on axis a.
func (r Record[T]) Coord(a Axis) float64 {
	if a == AxisY {
		return r.Y
	}
	return r.X
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func (r Record[T]) Finite() bool {
	return isFinite(r.X) && isFinite(r.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Bounds is an axis-aligned rectangle.
//
// Top is the largest Y and Bottom the smallest, matching a y-up world.
type Bounds struct {
	Left   float64
	Right  float64
	Bottom float64
	Top    float64
}

// EmptyBounds returns inverted bounds that any Extend call will replace.
func EmptyBounds() Bounds {
	return Bounds{
		Left:   math.Inf(1),
		Right:  math.Inf(-1),
		Bottom: math.Inf(1),
		Top:    math.Inf(-1),
	}
}

// Extend grows b to cover a rectangle of the given size centred on (x, y).
func (b Bounds) Extend(x, y, width, height float64) Bounds {
	b.Left = math.Min(x-width/2, b.Left)
	b.Right = math.Max(x+width/2, b.Right)
	b.Top = math.Max(y+height/2, b.Top)
	b.Bottom = math.Min(y-height/2, b.Bottom)
	return b
}

// Width returns Right - Left.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns Top - Bottom.
func (b Bounds) Height() float64 { return b.Top - b.Bottom }

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Bottom && p.Y <= b.Top
}

// String returns a string representation of the Bounds.
func (b Bounds) String() string {
	return fmt.Sprintf("Bounds(left=%g right=%g bottom=%g top=%g)", b.Left, b.Right, b.Bottom, b.Top)
}

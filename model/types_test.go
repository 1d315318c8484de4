package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisAt(t *testing.T) {
	assert.Equal(t, AxisX, AxisAt(0))
	assert.Equal(t, AxisY, AxisAt(1))
	assert.Equal(t, AxisX, AxisAt(2))
	assert.Equal(t, AxisY, AxisAt(7))
	assert.Equal(t, "x", AxisX.String())
	assert.Equal(t, "y", AxisY.String())
	assert.Equal(t, "Axis(5)", Axis(5).String())
}

func TestRecord(t *testing.T) {
	r := NewRecord("a", 1.5, -2, "payload")

	assert.Equal(t, Point{X: 1.5, Y: -2}, r.Point())
	assert.Equal(t, 1.5, r.Coord(AxisX))
	assert.Equal(t, -2.0, r.Coord(AxisY))
	assert.True(t, r.Finite())

	assert.False(t, NewRecord("n", math.NaN(), 0, 0).Finite())
	assert.False(t, NewRecord("i", 0, math.Inf(-1), 0).Finite())
}

func TestBounds(t *testing.T) {
	b := EmptyBounds().
		Extend(0, 0, 2, 2).
		Extend(10, 5, 4, 2)

	assert.Equal(t, Bounds{Left: -1, Right: 12, Bottom: -1, Top: 6}, b)
	assert.Equal(t, 13.0, b.Width())
	assert.Equal(t, 7.0, b.Height())
	assert.True(t, b.Contains(Point{X: 0, Y: 0}))
	assert.True(t, b.Contains(Point{X: 12, Y: 6}))
	assert.False(t, b.Contains(Point{X: 12.5, Y: 0}))
}

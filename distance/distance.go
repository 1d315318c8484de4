package distance

import (
	"fmt"
	"math"

	"github.com/hupe1980/kdmap/model"
)

// SquaredL2 calculates the squared Euclidean distance between (x1, y1) and (x2, y2).
func SquaredL2(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// SquaredL2Points calculates the squared Euclidean distance between two points.
func SquaredL2Points(a, b model.Point) float64 {
	return SquaredL2(a.X, a.Y, b.X, b.Y)
}

// SquaredAxis returns the squared distance from value to split along one axis.
// It lower-bounds the distance to any point on the far side of the split.
func SquaredAxis(value, split float64) float64 {
	d := value - split
	return d * d
}

// L2 returns the true Euclidean distance between two points.
func L2(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(SquaredL2(x1, y1, x2, y2))
}

// Metric represents the distance metric reported to callers.
type Metric int

const (
	// MetricSquaredL2 reports squared Euclidean distances.
	MetricSquaredL2 Metric = iota
	// MetricL2 reports Euclidean distances.
	MetricL2
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricL2:
		return "L2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Report converts a squared distance to the unit of the metric.
func (m Metric) Report(squared float64) float64 {
	if m == MetricL2 {
		return math.Sqrt(squared)
	}
	return squared
}

// ParseMetric returns the Metric named s.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "SquaredL2", "squared-l2", "l2sq":
		return MetricSquaredL2, nil
	case "L2", "l2", "euclidean":
		return MetricL2, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", s)
	}
}

package kdmap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	var c BasicMetricsCollector

	c.RecordLoad(10, time.Millisecond, nil)
	c.RecordLoad(0, time.Millisecond, errors.New("boom"))
	c.RecordBuild(10, 4*time.Millisecond)
	c.RecordQuery(OpNearest, 1, 2*time.Microsecond, nil)
	c.RecordQuery(OpKNearest, 5, 4*time.Microsecond, nil)
	c.RecordQuery(OpWithin, 0, 6*time.Microsecond, errors.New("boom"))

	s := c.GetStats()
	assert.Equal(t, BasicMetricsStats{
		LoadCount:     2,
		LoadErrors:    1,
		TilesLoaded:   10,
		BuildCount:    1,
		BuildAvgNanos: 4_000_000,
		QueryCount:    3,
		QueryErrors:   1,
		QueryResults:  6,
		QueryAvgNanos: 4_000,
	}, s)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	var c BasicMetricsCollector
	assert.Equal(t, BasicMetricsStats{}, c.GetStats())
}

func TestNoopMetricsCollector(t *testing.T) {
	var c MetricsCollector = NoopMetricsCollector{}
	c.RecordLoad(1, time.Second, nil)
	c.RecordBuild(1, time.Second)
	c.RecordQuery(OpNearest, 1, time.Second, nil)
}

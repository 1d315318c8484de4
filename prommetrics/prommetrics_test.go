package prommetrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/kdmap"
	"github.com/hupe1980/kdmap/mapfile"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := New("test")

	c.RecordLoad(12, time.Millisecond, nil)
	c.RecordLoad(0, time.Millisecond, errors.New("boom"))
	c.RecordBuild(12, time.Millisecond)
	c.RecordQuery(kdmap.OpNearest, 1, time.Microsecond, nil)
	c.RecordQuery(kdmap.OpNearest, 0, time.Microsecond, errors.New("boom"))
	c.RecordQuery(kdmap.OpKNearest, 5, time.Microsecond, nil)
	c.RecordRequest("/nearest", http.StatusOK, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.loads.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.tilesLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues(kdmap.OpNearest, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues(kdmap.OpNearest, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues(kdmap.OpKNearest, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("/nearest", "200")))
}

func TestCollector_WithMap(t *testing.T) {
	c := New("kdmap")

	m, err := kdmap.FromTiles([]mapfile.Tile{
		{ID: "a", Type: "grass", X: 0, Y: 0},
		{ID: "b", Type: "water", X: 5, Y: 5},
	}, kdmap.WithMetricsCollector(c))
	require.NoError(t, err)

	_, err = m.Nearest(t.Context(), 1, 1)
	require.NoError(t, err)
	_, err = m.NearestOfType(t.Context(), 1, 1, "lava")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues(kdmap.OpNearest, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues(kdmap.OpNearestOfType, "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.buildSeconds))
}

func TestCollector_Handler(t *testing.T) {
	c := New("kdmap")
	c.RecordQuery(kdmap.OpWithin, 3, time.Microsecond, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `kdmap_queries_total{op="within",status="ok"} 1`))
	assert.Contains(t, body, "go_goroutines")
}

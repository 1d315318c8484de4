package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/hupe1980/kdmap"
	"github.com/hupe1980/kdmap/mapfile"
	"github.com/hupe1980/kdmap/prommetrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	opts := []kdmap.Option{}
	if cfg.Metrics != nil {
		opts = append(opts, kdmap.WithMetricsCollector(cfg.Metrics))
	}
	m, err := kdmap.FromTiles([]mapfile.Tile{
		{ID: "a", Type: "grass", Width: 2, Height: 2, X: 0, Y: 0},
		{ID: "b", Type: "water", Width: 2, Height: 2, X: 3, Y: 4},
		{ID: "c", Type: "grass", Width: 2, Height: 2, X: 10, Y: 0},
	}, opts...)
	require.NoError(t, err)
	return New(m, cfg)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNearest(t *testing.T) {
	s := newTestServer(t, Config{})

	tests := []struct {
		name   string
		target string
		code   int
		id     string
	}{
		{"Plain", "/nearest?x=9&y=1", http.StatusOK, "c"},
		{"Typed", "/nearest?x=9&y=1&type=water", http.StatusOK, "b"},
		{"UnknownType", "/nearest?x=0&y=0&type=lava", http.StatusNotFound, ""},
		{"MissingY", "/nearest?x=0", http.StatusBadRequest, ""},
		{"BadX", "/nearest?x=abc&y=0", http.StatusBadRequest, ""},
		{"NaNX", "/nearest?x=NaN&y=0", http.StatusBadRequest, ""},
		{"InfX", "/nearest?x=Inf&y=0", http.StatusBadRequest, ""},
		{"NegInfY", "/nearest?x=0&y=-Inf", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.id == "" {
				return
			}
			var resp TileResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.id, resp.ID)
			assert.Nil(t, resp.Distance)
		})
	}
}

func TestKNearestAndWithin(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := get(t, s, "/knn?x=0&y=0&k=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var knn []TileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &knn))
	require.Len(t, knn, 2)
	assert.Equal(t, "a", knn[0].ID)
	assert.Equal(t, "b", knn[1].ID)
	require.NotNil(t, knn[1].Distance)
	assert.Equal(t, 5.0, *knn[1].Distance)

	rec = get(t, s, "/knn?x=0&y=0&k=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/within?x=0&y=0&radius=5&type=grass&type=water")
	require.Equal(t, http.StatusOK, rec.Code)
	var within []TileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &within))
	require.Len(t, within, 2)

	rec = get(t, s, "/within?x=0&y=0&radius=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNonFiniteParameters(t *testing.T) {
	s := newTestServer(t, Config{})

	for _, target := range []string{
		"/knn?x=NaN&y=NaN&k=2",
		"/knn?x=0&y=%2BInf&k=2",
		"/within?x=NaN&y=0&radius=5",
		"/within?x=0&y=0&radius=Inf",
		"/within?x=0&y=0&radius=NaN",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s, target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "encode response")
}

func TestPanicReleasesSlot(t *testing.T) {
	s := newTestServer(t, Config{MaxInFlight: 1})
	s.handle("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	func() {
		defer func() { assert.NotNil(t, recover()) }()
		get(t, s, "/boom")
	}()

	assert.Zero(t, s.admit.InFlight())
	assert.Equal(t, http.StatusOK, get(t, s, "/nearest?x=0&y=0").Code)
}

func TestBoundsAndStats(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := get(t, s, "/bounds")
	require.Equal(t, http.StatusOK, rec.Code)
	var b BoundsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, BoundsResponse{Left: -1, Right: 11, Bottom: -1, Top: 5}, b)

	rec = get(t, s, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var st StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 3, st.Tiles)
	assert.Equal(t, map[string]int{"grass": 2, "water": 1}, st.Types)
}

func TestBounds_Empty(t *testing.T) {
	m, err := kdmap.FromTiles(nil)
	require.NoError(t, err)

	rec := get(t, New(m, Config{}), "/bounds")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, New(m, Config{}), "/nearest?x=0&y=0")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Config{Rate: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, get(t, s, "/nearest?x=0&y=0").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/nearest?x=0&y=0").Code)

	rec := get(t, s, "/nearest?x=0&y=0")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Health checks bypass the limiter.
	assert.Equal(t, http.StatusNoContent, get(t, s, "/healthz").Code)
}

func TestMetrics(t *testing.T) {
	c := prommetrics.New("kdmap")
	s := newTestServer(t, Config{Metrics: c})

	get(t, s, "/nearest?x=0&y=0")
	get(t, s, "/nearest?x=0")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `kdmap_http_requests_total{code="200",route="/nearest"} 1`)
	assert.Contains(t, body, `kdmap_http_requests_total{code="400",route="/nearest"} 1`)
	assert.Contains(t, body, `kdmap_queries_total{op="nearest",status="ok"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nearest?x=0&y=0", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

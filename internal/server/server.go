// Package server exposes a kdmap.Map over HTTP.
package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hupe1980/kdmap"
	"github.com/hupe1980/kdmap/mapfile"
	"github.com/hupe1980/kdmap/prommetrics"
	"github.com/hupe1980/kdmap/resource"
)

// Config configures a Server.
type Config struct {
	// Rate is the sustained number of API requests per second. Zero or
	// negative disables limiting.
	Rate float64
	// Burst is the token bucket size. Defaults to max(1, Rate).
	Burst int
	// MaxInFlight bounds concurrent API requests. Zero means unlimited.
	MaxInFlight int64
	// Metrics, when set, records requests and serves GET /metrics.
	Metrics *prommetrics.Collector
	// Logger defaults to kdmap.NoopLogger.
	Logger *kdmap.Logger
}

// Server answers tile queries. It implements http.Handler.
type Server struct {
	m       *kdmap.Map
	admit   *resource.Controller
	metrics *prommetrics.Collector
	logger  *kdmap.Logger
	mux     *http.ServeMux
}

// New builds a Server for m.
func New(m *kdmap.Map, cfg Config) *Server {
	s := &Server{
		m:       m,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		mux:     http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = kdmap.NoopLogger()
	}
	if cfg.Rate > 0 || cfg.MaxInFlight > 0 {
		s.admit = resource.NewController(resource.Config{
			RequestsPerSecond: cfg.Rate,
			Burst:             cfg.Burst,
			MaxInFlight:       cfg.MaxInFlight,
		})
	}

	s.handle("GET /nearest", s.handleNearest)
	s.handle("GET /knn", s.handleKNearest)
	s.handle("GET /within", s.handleWithin)
	s.handle("GET /bounds", s.handleBounds)
	s.handle("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// handle registers an API route behind admission control and request metrics.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	route := pattern[strings.IndexByte(pattern, ' ')+1:]
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		release, err := s.admit.TryAdmit()
		switch {
		case errors.Is(err, resource.ErrRateLimited):
			rec.Header().Set("Retry-After", "1")
			writeError(rec, http.StatusTooManyRequests, err)
		case err != nil:
			writeError(rec, http.StatusServiceUnavailable, err)
		default:
			serveAdmitted(h, release, rec, r)
		}

		if s.metrics != nil {
			s.metrics.RecordRequest(route, rec.code, time.Since(start))
		}
		s.logger.DebugContext(r.Context(), "request served",
			"route", route,
			"status", rec.code,
			"duration", time.Since(start),
		)
	})
}

// serveAdmitted runs h and frees its admission slot even if h panics.
func serveAdmitted(h http.HandlerFunc, release func(), w http.ResponseWriter, r *http.Request) {
	defer release()
	h(w, r)
}

// TileResponse is the JSON form of a tile.
type TileResponse struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Distance *float64 `json:"distance,omitempty"`
}

func tileResponse(t mapfile.Tile) TileResponse {
	return TileResponse{ID: t.ID, Type: t.Type, X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

func resultResponses(results []kdmap.Result) []TileResponse {
	out := make([]TileResponse, len(results))
	for i, r := range results {
		out[i] = tileResponse(r.Tile)
		d := r.Distance
		out[i].Distance = &d
	}
	return out
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	x, y, err := point(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var tile mapfile.Tile
	if typ := r.URL.Query().Get("type"); typ != "" {
		tile, err = s.m.NearestOfType(r.Context(), x, y, typ)
	} else {
		tile, err = s.m.Nearest(r.Context(), x, y)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, tileResponse(tile))
}

func (s *Server) handleKNearest(w http.ResponseWriter, r *http.Request) {
	x, y, err := point(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	k := 5
	if v := r.URL.Query().Get("k"); v != "" {
		if k, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parameter k: %w", err))
			return
		}
	}

	results, err := s.m.KNearest(r.Context(), x, y, k, r.URL.Query()["type"]...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponses(results))
}

func (s *Server) handleWithin(w http.ResponseWriter, r *http.Request) {
	x, y, err := point(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	radius, err := floatParam(r, "radius")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := s.m.Within(r.Context(), x, y, radius, r.URL.Query()["type"]...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponses(results))
}

// BoundsResponse is the JSON form of the map borders.
type BoundsResponse struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

func (s *Server) handleBounds(w http.ResponseWriter, _ *http.Request) {
	b, ok := s.m.Bounds()
	if !ok {
		writeError(w, http.StatusNotFound, kdmap.ErrEmptyMap)
		return
	}
	writeJSON(w, http.StatusOK, BoundsResponse{Left: b.Left, Right: b.Right, Bottom: b.Bottom, Top: b.Top})
}

// StatsResponse is the JSON form of kdmap.Stats.
type StatsResponse struct {
	Tiles  int            `json:"tiles"`
	Height int            `json:"height"`
	Leaves int            `json:"leaves"`
	Types  map[string]int `json:"types"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	st := s.m.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{Tiles: st.Tiles, Height: st.Height, Leaves: st.Leaves, Types: st.Types})
}

func point(r *http.Request) (float64, float64, error) {
	x, err := floatParam(r, "x")
	if err != nil {
		return 0, 0, err
	}
	y, err := floatParam(r, "y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, fmt.Errorf("missing parameter %s", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parameter %s: %q is not a finite number", name, v)
	}
	return f, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, kdmap.ErrNotFound), errors.Is(err, kdmap.ErrEmptyMap):
		return http.StatusNotFound
	case errors.Is(err, kdmap.ErrInvalidK), errors.Is(err, kdmap.ErrInvalidRadius):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// writeJSON encodes v before writing the header; an encoding failure is
// answered with a 500 instead.
func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: fmt.Sprintf("encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(body, '\n'))
}

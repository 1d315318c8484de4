package kdmap

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kdmap/blobstore"
	"github.com/hupe1980/kdmap/index"
	"github.com/hupe1980/kdmap/index/kdtree"
	"github.com/hupe1980/kdmap/mapfile"
	"github.com/hupe1980/kdmap/model"
	"golang.org/x/sync/errgroup"
)

// Map is an indexed, immutable tile map. It is safe for concurrent use.
type Map struct {
	name   string
	tree   *kdtree.Tree[mapfile.Tile]
	bounds model.Bounds
	types  map[string]*roaring.Bitmap // tile type -> node ids
	byID   map[string]uint32
	opts   options
}

// Result is a tile returned by KNearest or Within.
type Result struct {
	Tile mapfile.Tile

	// NodeID is the tile's position in the index.
	NodeID uint32

	// Distance to the query point, reported with the configured metric.
	Distance float64
}

// Stats describes a loaded map.
type Stats struct {
	Tiles  int
	Height int
	Leaves int
	Types  map[string]int // tiles per type
	Bounds model.Bounds
}

// Open loads name from store and indexes it.
//
// JSON and TOML map files are decoded with mapfile.Load; files ending in
// SnapshotExt (optionally compressed) are read as index snapshots.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Map, error) {
	o := applyOptions(optFns)

	if IsSnapshot(name) {
		return openSnapshot(ctx, store, name, o)
	}

	start := time.Now()
	var (
		doc *mapfile.Map
		err error
	)
	if o.codec != nil {
		doc, err = mapfile.LoadWith(ctx, store, name, o.codec)
	} else {
		doc, err = mapfile.Load(ctx, store, name)
	}

	tiles := 0
	if doc != nil {
		tiles = len(doc.List)
	}
	o.metricsCollector.RecordLoad(tiles, time.Since(start), err)
	o.logger.LogLoad(ctx, name, tiles, err)
	if err != nil {
		return nil, named(translateError(err), name)
	}

	return build(ctx, name, doc.Records(), o), nil
}

// FromTiles validates tiles and indexes them. The slice is not retained.
func FromTiles(tiles []mapfile.Tile, optFns ...Option) (*Map, error) {
	o := applyOptions(optFns)

	doc := &mapfile.Map{List: tiles}
	if err := doc.Validate(); err != nil {
		return nil, translateError(err)
	}
	return build(context.Background(), "", doc.Records(), o), nil
}

func named(err error, name string) error {
	var im *ErrInvalidMap
	if errors.As(err, &im) {
		im.Name = name
	}
	return err
}

func build(ctx context.Context, name string, records []model.Record[mapfile.Tile], o options) *Map {
	start := time.Now()
	tree := kdtree.Build(records)
	o.metricsCollector.RecordBuild(tree.Len(), time.Since(start))
	o.logger.LogBuild(ctx, tree.Len(), tree.Height())
	return newMap(name, tree, o)
}

func newMap(name string, tree *kdtree.Tree[mapfile.Tile], o options) *Map {
	m := &Map{
		name:   name,
		tree:   tree,
		bounds: model.EmptyBounds(),
		types:  make(map[string]*roaring.Bitmap),
		byID:   make(map[string]uint32, tree.Len()),
		opts:   o,
	}
	for id, rec := range tree.All() {
		t := rec.Data
		m.bounds = m.bounds.Extend(t.X, t.Y, t.Width, t.Height)

		bm, ok := m.types[t.Type]
		if !ok {
			bm = roaring.New()
			m.types[t.Type] = bm
		}
		bm.Add(id)
		m.byID[t.ID] = id
	}
	for _, bm := range m.types {
		bm.RunOptimize()
	}
	return m
}

// Name returns the blob name the map was opened from, empty for FromTiles.
func (m *Map) Name() string {
	return m.name
}

// Len returns the number of tiles.
func (m *Map) Len() int {
	return m.tree.Len()
}

// Bounds returns the rectangle covering every tile. It reports false for an
// empty map.
func (m *Map) Bounds() (model.Bounds, bool) {
	if m.tree.Empty() {
		return model.Bounds{}, false
	}
	return m.bounds, true
}

// Types returns the sorted distinct tile types.
func (m *Map) Types() []string {
	return slices.Sorted(maps.Keys(m.types))
}

// Tile returns the tile with the given id.
func (m *Map) Tile(id string) (mapfile.Tile, error) {
	node, ok := m.byID[id]
	if !ok {
		return mapfile.Tile{}, fmt.Errorf("%w: tile %q", ErrNotFound, id)
	}
	rec, err := m.tree.Get(node)
	if err != nil {
		return mapfile.Tile{}, translateError(err)
	}
	return rec.Data, nil
}

// Stats returns statistics about the map and its index.
func (m *Map) Stats() Stats {
	ts := m.tree.Stats()
	s := Stats{
		Tiles:  ts.Count,
		Height: ts.Height,
		Leaves: ts.Leaves,
		Types:  make(map[string]int, len(m.types)),
	}
	for typ, bm := range m.types {
		s.Types[typ] = int(bm.GetCardinality())
	}
	s.Bounds, _ = m.Bounds()
	return s
}

// Nearest returns the tile closest to (x, y), or ErrEmptyMap.
func (m *Map) Nearest(ctx context.Context, x, y float64) (mapfile.Tile, error) {
	start := time.Now()
	tile, err := m.nearest(ctx, x, y)
	m.observe(ctx, OpNearest, start, one(err), err)
	return tile, err
}

func (m *Map) nearest(ctx context.Context, x, y float64) (mapfile.Tile, error) {
	if err := ctx.Err(); err != nil {
		return mapfile.Tile{}, err
	}
	rec, ok := m.tree.Nearest(x, y)
	if !ok {
		return mapfile.Tile{}, ErrEmptyMap
	}
	return rec.Data, nil
}

// NearestOfType returns the closest tile whose Type is typ.
// It returns ErrNotFound when no tile has that type.
func (m *Map) NearestOfType(ctx context.Context, x, y float64, typ string) (mapfile.Tile, error) {
	start := time.Now()
	tile, err := m.nearestOfType(ctx, x, y, typ)
	m.observe(ctx, OpNearestOfType, start, one(err), err)
	return tile, err
}

func (m *Map) nearestOfType(ctx context.Context, x, y float64, typ string) (mapfile.Tile, error) {
	if err := ctx.Err(); err != nil {
		return mapfile.Tile{}, err
	}
	if m.tree.Empty() {
		return mapfile.Tile{}, ErrEmptyMap
	}
	filter, err := m.filter(typ)
	if err != nil {
		return mapfile.Tile{}, err
	}
	res, ok := m.tree.NearestFiltered(x, y, filter)
	if !ok {
		return mapfile.Tile{}, fmt.Errorf("%w: tile type %q", ErrNotFound, typ)
	}
	return res.Record.Data, nil
}

// KNearest returns up to k tiles ordered by ascending distance, ties broken
// by node id. When types are given only tiles of those types are considered.
func (m *Map) KNearest(ctx context.Context, x, y float64, k int, types ...string) ([]Result, error) {
	start := time.Now()
	results, err := m.knearest(ctx, x, y, k, types)
	m.observe(ctx, OpKNearest, start, len(results), err)
	return results, err
}

func (m *Map) knearest(ctx context.Context, x, y float64, k int, types []string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter, err := m.filter(types...)
	if err != nil {
		return nil, err
	}
	res, err := m.tree.KNearest(x, y, k, filter)
	if err != nil {
		return nil, translateError(err)
	}
	return m.results(res), nil
}

// Within returns every tile within radius of (x, y), ordered by ascending
// distance. When types are given only tiles of those types are considered.
func (m *Map) Within(ctx context.Context, x, y, radius float64, types ...string) ([]Result, error) {
	start := time.Now()
	results, err := m.within(ctx, x, y, radius, types)
	m.observe(ctx, OpWithin, start, len(results), err)
	return results, err
}

func (m *Map) within(ctx context.Context, x, y, radius float64, types []string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter, err := m.filter(types...)
	if err != nil {
		return nil, err
	}
	res, err := m.tree.Within(x, y, radius, filter)
	if err != nil {
		return nil, translateError(err)
	}
	return m.results(res), nil
}

// NearestBatch answers Nearest for every point concurrently. The result at
// index i belongs to points[i]. It stops early when ctx is cancelled.
func (m *Map) NearestBatch(ctx context.Context, points []model.Point) ([]mapfile.Tile, error) {
	start := time.Now()
	out, err := m.nearestBatch(ctx, points)
	m.observe(ctx, OpNearestBatch, start, len(out), err)
	return out, err
}

func (m *Map) nearestBatch(ctx context.Context, points []model.Point) ([]mapfile.Tile, error) {
	if len(points) > 0 && m.tree.Empty() {
		return nil, ErrEmptyMap
	}

	out := make([]mapfile.Tile, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.concurrency)
	for i, p := range points {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, _ := m.tree.Nearest(p.X, p.Y)
			out[i] = rec.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// filter returns a node filter admitting the given tile types, nil for none.
func (m *Map) filter(types ...string) (index.Filter, error) {
	if len(types) == 0 {
		return nil, nil
	}
	bms := make([]*roaring.Bitmap, 0, len(types))
	for _, typ := range types {
		bm, ok := m.types[typ]
		if !ok {
			return nil, fmt.Errorf("%w: tile type %q", ErrNotFound, typ)
		}
		bms = append(bms, bm)
	}
	if len(bms) == 1 {
		return bms[0].Contains, nil
	}
	return roaring.FastOr(bms...).Contains, nil
}

func (m *Map) results(res []index.SearchResult[mapfile.Tile]) []Result {
	out := make([]Result, len(res))
	for i, r := range res {
		out[i] = Result{
			Tile:     r.Record.Data,
			NodeID:   r.ID,
			Distance: m.opts.metric.Report(r.Distance),
		}
	}
	return out
}

func (m *Map) observe(ctx context.Context, op string, start time.Time, results int, err error) {
	m.opts.metricsCollector.RecordQuery(op, results, time.Since(start), err)
	m.opts.logger.LogQuery(ctx, op, results, err)
}

func one(err error) int {
	if err != nil {
		return 0
	}
	return 1
}

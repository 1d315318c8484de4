package kdmap

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/hupe1980/kdmap/blobstore"
	"github.com/hupe1980/kdmap/codec"
	"github.com/hupe1980/kdmap/distance"
	"github.com/hupe1980/kdmap/index/kdtree"
	"github.com/hupe1980/kdmap/mapfile"
	"github.com/hupe1980/kdmap/model"
	"github.com/hupe1980/kdmap/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTiles() []mapfile.Tile {
	return []mapfile.Tile{
		{ID: "g1", Type: "grass", Width: 1, Height: 1, X: 0, Y: 0},
		{ID: "g2", Type: "grass", Width: 1, Height: 1, X: 4, Y: 0},
		{ID: "w1", Type: "water", Width: 2, Height: 2, X: 10, Y: 10},
		{ID: "s1", Type: "sand", Width: 1, Height: 3, X: -5, Y: 2},
		{ID: "w2", Type: "water", Width: 1, Height: 1, X: 1, Y: 8},
	}
}

func mustMap(t *testing.T, opts ...Option) *Map {
	t.Helper()
	m, err := FromTiles(sampleTiles(), opts...)
	require.NoError(t, err)
	return m
}

func TestFromTiles(t *testing.T) {
	m := mustMap(t)

	assert.Equal(t, 5, m.Len())
	assert.Equal(t, []string{"grass", "sand", "water"}, m.Types())

	b, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, model.Bounds{Left: -5.5, Right: 11, Bottom: -0.5, Top: 11}, b)

	tile, err := m.Tile("w1")
	require.NoError(t, err)
	assert.Equal(t, "water", tile.Type)

	_, err = m.Tile("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromTiles_Invalid(t *testing.T) {
	_, err := FromTiles([]mapfile.Tile{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)

	var im *ErrInvalidMap
	require.ErrorAs(t, err, &im)
	assert.ErrorIs(t, err, mapfile.ErrInvalidTile)
}

func TestFromTiles_DoesNotRetainInput(t *testing.T) {
	tiles := sampleTiles()
	m, err := FromTiles(tiles)
	require.NoError(t, err)

	tiles[0].Type = "lava"
	tiles[0].X = 100

	tile, err := m.Nearest(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "g1", tile.ID)
	assert.Equal(t, "grass", tile.Type)
}

func TestNearest(t *testing.T) {
	ctx := context.Background()
	m := mustMap(t)

	tests := []struct {
		name string
		x, y float64
		want string
	}{
		{"Origin", 0, 0, "g1"},
		{"NearG2", 3.5, 0.5, "g2"},
		{"FarCorner", 20, 20, "w1"},
		{"West", -10, 2, "s1"},
		{"North", 0, 9, "w2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile, err := m.Nearest(ctx, tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tile.ID)
		})
	}
}

func TestNearest_Empty(t *testing.T) {
	ctx := context.Background()
	m, err := FromTiles(nil)
	require.NoError(t, err)

	_, err = m.Nearest(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrEmptyMap)

	_, err = m.NearestOfType(ctx, 0, 0, "grass")
	assert.ErrorIs(t, err, ErrEmptyMap)

	_, ok := m.Bounds()
	assert.False(t, ok)
	assert.Empty(t, m.Types())

	out, err := m.NearestBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = m.NearestBatch(ctx, []model.Point{{X: 1, Y: 1}})
	assert.ErrorIs(t, err, ErrEmptyMap)
}

func TestNearest_Cancelled(t *testing.T) {
	m := mustMap(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Nearest(ctx, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNearestOfType(t *testing.T) {
	ctx := context.Background()
	m := mustMap(t)

	tile, err := m.NearestOfType(ctx, 0, 0, "water")
	require.NoError(t, err)
	assert.Equal(t, "w2", tile.ID)

	tile, err = m.NearestOfType(ctx, 9, 9, "grass")
	require.NoError(t, err)
	assert.Equal(t, "g2", tile.ID)

	_, err = m.NearestOfType(ctx, 0, 0, "lava")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKNearest(t *testing.T) {
	ctx := context.Background()
	m := mustMap(t)

	res, err := m.KNearest(ctx, 0, 0, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "g1", res[0].Tile.ID)
	assert.Equal(t, "g2", res[1].Tile.ID)
	assert.Equal(t, "s1", res[2].Tile.ID)
	assert.Equal(t, 0.0, res[0].Distance)
	assert.Equal(t, 4.0, res[1].Distance)

	res, err = m.KNearest(ctx, 0, 0, 10, "water", "sand")
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"s1", "w2", "w1"}, ids(res))

	_, err = m.KNearest(ctx, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = m.KNearest(ctx, 0, 0, 1, "lava")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKNearest_SquaredMetric(t *testing.T) {
	m := mustMap(t, WithDistanceMetric(distance.MetricSquaredL2))

	res, err := m.KNearest(context.Background(), 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 16.0, res[1].Distance)
}

func TestWithin(t *testing.T) {
	ctx := context.Background()
	m := mustMap(t)

	res, err := m.Within(ctx, 0, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, ids(res))

	res, err = m.Within(ctx, 0, 0, 100, "water")
	require.NoError(t, err)
	assert.Equal(t, []string{"w2", "w1"}, ids(res))

	_, err = m.Within(ctx, 0, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = m.Within(ctx, 0, 0, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestNearestBatch(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)

	records := rng.UniformRecords(500, -100, 100)
	tiles := make([]mapfile.Tile, len(records))
	for i, r := range records {
		tiles[i] = mapfile.Tile{ID: r.ID, Type: "t", X: r.X, Y: r.Y}
	}
	m, err := FromTiles(tiles, WithConcurrency(4))
	require.NoError(t, err)

	points := make([]model.Point, 200)
	for i := range points {
		points[i] = rng.Point(-120, 120)
	}

	out, err := m.NearestBatch(ctx, points)
	require.NoError(t, err)
	require.Len(t, out, len(points))

	for i, p := range points {
		want, err := m.Nearest(ctx, p.X, p.Y)
		require.NoError(t, err)
		assert.Equal(t, want, out[i])
	}
}

func TestNearestBatch_Cancelled(t *testing.T) {
	m := mustMap(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.NearestBatch(ctx, []model.Point{{X: 1}, {X: 2}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	doc := &mapfile.Map{List: sampleTiles()}
	require.NoError(t, doc.Save(ctx, store, "level.json.zst"))

	metrics := &BasicMetricsCollector{}
	m, err := Open(ctx, store, "level.json.zst", WithMetricsCollector(metrics))
	require.NoError(t, err)
	assert.Equal(t, 5, m.Len())
	assert.Equal(t, "level.json.zst", m.Name())

	_, err = m.Nearest(ctx, 0, 0)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(5), stats.TilesLoaded)
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.QueryCount)
	assert.Equal(t, int64(1), stats.QueryResults)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	t.Run("Missing", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		_, err := Open(ctx, store, "missing.json", WithMetricsCollector(metrics))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, int64(1), metrics.GetStats().LoadErrors)
	})

	t.Run("Invalid", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "bad.json", []byte(`{"List":[{"Id":""}]}`)))
		_, err := Open(ctx, store, "bad.json")

		var im *ErrInvalidMap
		require.ErrorAs(t, err, &im)
		assert.Equal(t, "bad.json", im.Name)
		assert.ErrorIs(t, err, mapfile.ErrInvalidTile)
	})

	t.Run("ForcedCodec", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "level.data", []byte(`{"List":[{"Id":"a","X":1,"Y":1}]}`)))
		m, err := Open(ctx, store, "level.data", WithCodec(codec.JSON{}))
		require.NoError(t, err)
		assert.Equal(t, 1, m.Len())
	})
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := mustMap(t)

	for _, name := range []string{"level.kdt", "level.kdt.lz4", "level.kdt.zst"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, m.WriteSnapshot(ctx, store, name))

			restored, err := Open(ctx, store, name)
			require.NoError(t, err)
			assert.Equal(t, m.Stats(), restored.Stats())

			for id, rec := range m.tree.All() {
				got, err := restored.tree.Get(id)
				require.NoError(t, err)
				assert.Equal(t, rec, got)
			}
		})
	}

	t.Run("WrongExtension", func(t *testing.T) {
		assert.Error(t, m.WriteSnapshot(ctx, store, "level.json"))
	})

	t.Run("Tampered", func(t *testing.T) {
		require.NoError(t, m.WriteSnapshot(ctx, store, "tampered.kdt"))
		data, err := blobstore.ReadAll(ctx, store, "tampered.kdt")
		require.NoError(t, err)
		data[len(data)/2] ^= 0xff
		require.NoError(t, store.Put(ctx, "tampered.kdt", data))

		_, err = Open(ctx, store, "tampered.kdt")
		assert.ErrorIs(t, err, kdtree.ErrCorrupt)
	})

	t.Run("IndexedElsewhere", func(t *testing.T) {
		tile := mapfile.Tile{ID: "far", Type: "grass", X: 50, Y: 50}
		tree := kdtree.Build([]model.Record[mapfile.Tile]{model.NewRecord("far", 0, 0, tile)})
		payload, err := tree.GobEncode()
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "moved.kdt", frameSnapshot(payload)))

		_, err = Open(ctx, store, "moved.kdt")
		assert.ErrorIs(t, err, kdtree.ErrCorrupt)
	})

	t.Run("Corrupt", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "junk.kdt", []byte("not a gob")))
		_, err := Open(ctx, store, "junk.kdt")

		var im *ErrInvalidMap
		assert.ErrorAs(t, err, &im)
	})
}

func TestStats(t *testing.T) {
	m := mustMap(t)
	s := m.Stats()

	assert.Equal(t, 5, s.Tiles)
	assert.Equal(t, 3, s.Height)
	assert.Equal(t, map[string]int{"grass": 2, "sand": 1, "water": 2}, s.Types)
}

func TestConcurrentQueries(t *testing.T) {
	ctx := context.Background()
	m := mustMap(t, WithMetricsCollector(&BasicMetricsCollector{}))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for g := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				x := float64((g*100+i)%21 - 10)
				if _, err := m.Nearest(ctx, x, x); err != nil {
					errs <- err
					return
				}
				if _, err := m.NearestOfType(ctx, x, -x, "water"); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))

	other := errors.New("other")
	assert.Equal(t, other, translateError(other))

	assert.ErrorIs(t, translateError(blobstore.ErrNotFound), ErrNotFound)
	assert.ErrorIs(t, translateError(blobstore.ErrNotFound), blobstore.ErrNotFound)
}

func ids(res []Result) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.Tile.ID
	}
	return out
}

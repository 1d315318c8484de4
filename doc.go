// Package kdmap answers nearest-tile queries over a static 2-d tile map.
//
// A map document (see package mapfile) is loaded from a blobstore, validated
// and indexed in a median-split k-d tree. The resulting Map is immutable and
// safe for concurrent use.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./maps")
//	m, err := kdmap.Open(ctx, store, "level1.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tile, _ := m.Nearest(ctx, 12.5, -3)
//	water, _ := m.NearestOfType(ctx, 12.5, -3, "water")
//
// Map files may be JSON or TOML, optionally compressed (level1.json.zst,
// level1.toml.lz4). A built index can be written as a snapshot
// (level1.kdt, level1.kdt.zst) and opened again without re-sorting.
//
// # Remote Storage
//
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "maps/")
//	m, err := kdmap.Open(ctx, store, "level1.json.zst")
//
// # Observability
//
// Logging is off unless WithLogger is given. Metrics go to a
// MetricsCollector; see package prommetrics for a Prometheus collector.
//
//	m, err := kdmap.Open(ctx, store, name,
//	    kdmap.WithLogger(kdmap.NewJSONLogger(slog.LevelDebug)),
//	    kdmap.WithMetricsCollector(&kdmap.BasicMetricsCollector{}),
//	)
package kdmap

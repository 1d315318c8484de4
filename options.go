package kdmap

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/kdmap/codec"
	"github.com/hupe1980/kdmap/distance"
)

type options struct {
	codec            codec.Codec
	metric           distance.Metric
	concurrency      int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Open and FromTiles.
type Option func(*options)

// WithCodec forces the codec used to decode map files.
//
// By default the codec is chosen from the file extension. If nil is passed,
// extension-based selection is kept.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithDistanceMetric selects how Result.Distance is reported.
// The default is distance.MetricL2. Search order is the same for both.
func WithDistanceMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithConcurrency bounds the number of goroutines NearestBatch uses.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example:
//
//	metrics := &kdmap.BasicMetricsCollector{}
//	m, _ := kdmap.Open(ctx, store, "level.json", kdmap.WithMetricsCollector(metrics))
//	// ... query m ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kdmap.NewJSONLogger(slog.LevelInfo)
//	m, _ := kdmap.Open(ctx, store, "level.json", kdmap.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            nil,
		metric:           distance.MetricL2,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}

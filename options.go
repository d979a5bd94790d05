package seqstore

import (
	"log/slog"

	"github.com/hupe1980/seqstore/datastore"
	"github.com/hupe1980/seqstore/resource"
)

type options struct {
	hint             ProviderHint
	filter           datastore.Filter
	cacheSize        int
	duplicates       datastore.DuplicatePolicy
	lookup           datastore.LookupMode
	queueSize        int
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
}

// Option configures how Open builds a store.
type Option func(*options)

// WithProviderHint selects the store variant. Default is RandomAccessLazy.
func WithProviderHint(hint ProviderHint) Option {
	return func(o *options) {
		o.hint = hint
	}
}

// WithFilter restricts the store to the ids accepted by f. The filter runs
// once per record during construction.
func WithFilter(f datastore.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithCacheSize wraps the store in an LRU of n records. n <= 0 disables
// caching.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithDuplicatePolicy decides which record a repeated id maps to.
// Default is datastore.LastWins.
func WithDuplicatePolicy(p datastore.DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = p
	}
}

// WithLookupMode selects how lazy stores re-read a record.
func WithLookupMode(m datastore.LookupMode) Option {
	return func(o *options) {
		o.lookup = m
	}
}

// WithQueueSize sets the record queue of IterationOnly stores.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &seqstore.BasicMetricsCollector{}
//	s, _ := seqstore.Open(ctx, store, "reads.fq", fastq.Format{}, seqstore.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Gets: %d, Avg latency: %dns\n", stats.GetCount, stats.GetAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := seqstore.NewJSONLogger(slog.LevelInfo)
//	s, _ := seqstore.Open(ctx, store, "assembly.fa", fasta.Format{}, seqstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

// WithResourceController shares memory, producer and IO limits across
// stores.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		hint:             RandomAccessLazy,
		duplicates:       datastore.LastWins,
		lookup:           datastore.LookupMemento,
		queueSize:        datastore.DefaultQueueSize,
		metricsCollector: nil,
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

// storeOptions translates the facade options for the datastore package.
func (o options) storeOptions(logger *Logger) []datastore.Option {
	opts := []datastore.Option{
		datastore.WithFilter(o.filter),
		datastore.WithDuplicatePolicy(o.duplicates),
		datastore.WithLookupMode(o.lookup),
		datastore.WithQueueSize(o.queueSize),
		datastore.WithLogger(logger.Logger),
	}
	if o.rc != nil {
		opts = append(opts, datastore.WithProducerLimiter(o.rc))
	}
	return opts
}

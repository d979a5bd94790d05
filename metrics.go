package seqstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after a store was constructed (or failed to).
	// hint is the variant actually built.
	RecordBuild(hint ProviderHint, duration time.Duration, err error)

	// RecordGet is called after each Get. found is false for misses.
	RecordGet(duration time.Duration, found bool, err error)

	// RecordIterate is called when an IDs or Values iteration ends.
	// records is the number of items yielded.
	RecordIterate(records int, duration time.Duration, err error)

	// RecordClose is called once when a store is closed.
	RecordClose(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(ProviderHint, time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(time.Duration, bool, error)           {}
func (NoopMetricsCollector) RecordIterate(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordClose(error)                              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	GetCount        atomic.Int64
	GetMisses       atomic.Int64
	GetErrors       atomic.Int64
	GetTotalNanos   atomic.Int64
	IterateCount    atomic.Int64
	IterateRecords  atomic.Int64
	IterateErrors   atomic.Int64
	CloseCount      atomic.Int64
	CloseErrors     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ ProviderHint, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, found bool, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		b.GetErrors.Add(1)
	case !found:
		b.GetMisses.Add(1)
	}
}

// RecordIterate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIterate(records int, _ time.Duration, err error) {
	b.IterateCount.Add(1)
	b.IterateRecords.Add(int64(records))
	if err != nil {
		b.IterateErrors.Add(1)
	}
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(err error) {
	b.CloseCount.Add(1)
	if err != nil {
		b.CloseErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
		BuildAvgNanos:  avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		GetCount:       b.GetCount.Load(),
		GetMisses:      b.GetMisses.Load(),
		GetErrors:      b.GetErrors.Load(),
		GetAvgNanos:    avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		IterateCount:   b.IterateCount.Load(),
		IterateRecords: b.IterateRecords.Load(),
		IterateErrors:  b.IterateErrors.Load(),
		CloseCount:     b.CloseCount.Load(),
		CloseErrors:    b.CloseErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildErrors    int64
	BuildAvgNanos  int64
	GetCount       int64
	GetMisses      int64
	GetErrors      int64
	GetAvgNanos    int64
	IterateCount   int64
	IterateRecords int64
	IterateErrors  int64
	CloseCount     int64
	CloseErrors    int64
}

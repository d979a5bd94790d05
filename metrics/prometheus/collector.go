// Package prometheus exports seqstore metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := seqprom.NewCollector(reg, seqprom.WithNamespace("assembly"))
//	s, err := seqstore.Open(ctx, store, "contigs.fa", fasta.Format{},
//	    seqstore.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/seqstore"
)

// Collector implements seqstore.MetricsCollector with client_golang
// metrics.
type Collector struct {
	opLatency   *prometheus.HistogramVec
	builds      *prometheus.CounterVec
	gets        *prometheus.CounterVec
	iterRecords prometheus.Counter
	iterations  *prometheus.CounterVec
	closes      *prometheus.CounterVec
}

var _ seqstore.MetricsCollector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace prefixes every metric name. Default is "seqstore".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(b []float64) Option {
	return func(o *options) {
		o.buckets = b
	}
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer, optFns ...Option) (*Collector, error) {
	o := options{
		namespace: "seqstore",
		buckets:   prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of store operations",
			Buckets:   o.buckets,
		}, []string{"op", "status"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "builds_total",
			Help:      "Stores constructed, by variant and status",
		}, []string{"hint", "status"}),
		gets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "gets_total",
			Help:      "Get calls, by result",
		}, []string{"result"}),
		iterRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "iterated_records_total",
			Help:      "Records and ids yielded by iterations",
		}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "iterations_total",
			Help:      "Completed or abandoned iterations, by status",
		}, []string{"status"}),
		closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "closes_total",
			Help:      "Store closes, by status",
		}, []string{"status"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.builds, c.gets, c.iterRecords, c.iterations, c.closes} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordBuild implements seqstore.MetricsCollector.
func (c *Collector) RecordBuild(hint seqstore.ProviderHint, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues("build", s).Observe(d.Seconds())
	c.builds.WithLabelValues(hint.String(), s).Inc()
}

// RecordGet implements seqstore.MetricsCollector.
func (c *Collector) RecordGet(d time.Duration, found bool, err error) {
	c.opLatency.WithLabelValues("get", status(err)).Observe(d.Seconds())
	switch {
	case err != nil:
		c.gets.WithLabelValues("error").Inc()
	case found:
		c.gets.WithLabelValues("hit").Inc()
	default:
		c.gets.WithLabelValues("miss").Inc()
	}
}

// RecordIterate implements seqstore.MetricsCollector.
func (c *Collector) RecordIterate(records int, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues("iterate", s).Observe(d.Seconds())
	c.iterations.WithLabelValues(s).Inc()
	c.iterRecords.Add(float64(records))
}

// RecordClose implements seqstore.MetricsCollector.
func (c *Collector) RecordClose(err error) {
	c.closes.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

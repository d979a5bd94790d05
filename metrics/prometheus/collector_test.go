package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, WithNamespace("test"))
	require.NoError(t, err)

	c.RecordBuild(seqstore.RandomAccessLazy, time.Millisecond, nil)
	c.RecordBuild(seqstore.IterationOnly, time.Millisecond, errors.New("boom"))
	c.RecordGet(time.Microsecond, true, nil)
	c.RecordGet(time.Microsecond, true, nil)
	c.RecordGet(time.Microsecond, false, nil)
	c.RecordGet(time.Microsecond, false, errors.New("boom"))
	c.RecordIterate(42, time.Millisecond, nil)
	c.RecordClose(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("lazy", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("iteration", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.gets.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gets.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gets.WithLabelValues("error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.iterRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.closes.WithLabelValues("success")))

	n, err := testutil.GatherAndCount(reg, "test_operation_latency_seconds")
	require.NoError(t, err)
	// build, get and iterate by status
	assert.Equal(t, 5, n)
}

func TestCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)
	_, err = NewCollector(reg)
	assert.Error(t, err)
}

package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for cached bytes.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`

	// MaxProducers is the maximum number of concurrent streaming producers.
	// If 0, producers are not limited.
	MaxProducers int64 `yaml:"max_producers"`

	// IOLimitBytesPerSec is the maximum read throughput of producers and
	// cache fills. If 0, unlimited.
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// Controller manages resources shared across stores.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	prodSem   *semaphore.Weighted // nil if unlimited
	producers atomic.Int64
	ioLimiter *rate.Limiter
	ioBurst   int
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.MaxProducers > 0 {
		c.prodSem = semaphore.NewWeighted(cfg.MaxProducers)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioBurst = int(cfg.IOLimitBytesPerSec)
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.ioBurst)
	}

	return c
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if !c.TryAcquireMemory(bytes) {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// TryAcquireMemory reserves memory and reports whether it succeeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireProducer reserves a producer slot, blocking until one is free or
// ctx is done.
func (c *Controller) AcquireProducer(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.prodSem != nil {
		if err := c.prodSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.producers.Add(1)
	return nil
}

// ReleaseProducer releases a producer slot.
func (c *Controller) ReleaseProducer() {
	if c == nil {
		return
	}
	c.producers.Add(-1)
	if c.prodSem != nil {
		c.prodSem.Release(1)
	}
}

// ActiveProducers returns the number of producers holding a slot.
func (c *Controller) ActiveProducers() int64 {
	if c == nil {
		return 0
	}
	return c.producers.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	for bytes > 0 {
		n := min(bytes, c.ioBurst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

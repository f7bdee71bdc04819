package db

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusDisconnecting
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

var ErrNotConnected = errors.New("database not connected")

const connectKey = "connect"

type DialFunc[H any] func(ctx context.Context) (H, error)

type CloseFunc[H any] func(ctx context.Context, h H) error

// Observer receives the outcome of every connection attempt.
type Observer interface {
	ObserveConnect(name, result string)
}

type Options struct {
	// Name labels logs and metrics ("mongo", "postgres").
	Name string
	// ConnectTimeout bounds a single attempt. Zero leaves it to the dialer.
	ConnectTimeout time.Duration
	// BufferCommands makes Handle wait for a connection instead of failing
	// with ErrNotConnected.
	BufferCommands bool
	Logger         *slog.Logger
	Observer       Observer
}

// Cache holds at most one live handle and at most one in-flight connection
// attempt. Callers that arrive while an attempt is running wait for it and
// share its outcome.
type Cache[H any] struct {
	dial  DialFunc[H]
	close CloseFunc[H]
	opts  Options
	log   *slog.Logger

	group singleflight.Group

	mu     sync.Mutex
	handle H
	status Status
	// closed when the running Release finishes; nil unless disconnecting
	released chan struct{}
}

func NewCache[H any](dial DialFunc[H], closeFn CloseFunc[H], opts Options) *Cache[H] {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Cache[H]{
		dial:   dial,
		close:  closeFn,
		opts:   opts,
		log:    log.With("db", opts.Name),
		status: StatusDisconnected,
	}
}

// Acquire returns the live handle, connecting first if needed. A failed
// attempt is not retried; the next call starts a fresh one.
func (c *Cache[H]) Acquire(ctx context.Context) (H, error) {
	h, err := c.Ready()
	if err == nil {
		return h, nil
	}

	ch := c.group.DoChan(connectKey, func() (any, error) {
		return c.connect(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero H
			return zero, res.Err
		}
		return res.Val.(H), nil
	case <-ctx.Done():
		var zero H
		return zero, ctx.Err()
	}
}

func (c *Cache[H]) connect(ctx context.Context) (H, error) {
	c.mu.Lock()
	c.waitReleasedLocked()
	if c.status == StatusConnected {
		h := c.handle
		c.mu.Unlock()
		return h, nil
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	// the attempt is shared, so it must outlive the caller that started it
	dialCtx := context.WithoutCancel(ctx)
	if c.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(dialCtx, c.opts.ConnectTimeout)
		defer cancel()
	}

	start := time.Now()
	c.log.Info("database connecting")

	h, err := c.dial(dialCtx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.status = StatusDisconnected
		c.observe("error")
		c.log.Error("database connection failed", "err", err, "elapsed_ms", time.Since(start).Milliseconds())
		var zero H
		return zero, err
	}

	c.handle = h
	c.status = StatusConnected
	c.observe("ok")
	c.log.Info("database connected", "elapsed_ms", time.Since(start).Milliseconds())

	return h, nil
}

// Ready returns the live handle without connecting.
func (c *Cache[H]) Ready() (H, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusConnected {
		var zero H
		return zero, ErrNotConnected
	}
	return c.handle, nil
}

// Handle is what stores call before every operation: Acquire when commands
// are buffered, Ready otherwise.
func (c *Cache[H]) Handle(ctx context.Context) (H, error) {
	if c.opts.BufferCommands {
		return c.Acquire(ctx)
	}
	return c.Ready()
}

// Release closes the live handle and resets the cache. It is a no-op when
// nothing is connected; a call that overlaps another Release waits for it.
// Connection attempts started meanwhile do not dial until the close is done.
func (c *Cache[H]) Release(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusDisconnecting {
		c.waitReleasedLocked()
		c.mu.Unlock()
		return nil
	}
	if c.status != StatusConnected {
		c.mu.Unlock()
		return nil
	}
	h := c.handle
	released := make(chan struct{})
	c.released = released
	c.status = StatusDisconnecting
	c.mu.Unlock()

	c.log.Info("database disconnecting")
	err := c.close(ctx, h)

	c.mu.Lock()
	var zero H
	c.handle = zero
	c.status = StatusDisconnected
	c.released = nil
	close(released)
	c.mu.Unlock()

	if err != nil {
		c.log.Error("database disconnect failed", "err", err)
		return err
	}

	c.log.Info("database disconnected")
	return nil
}

// caller holds c.mu; it is dropped while waiting
func (c *Cache[H]) waitReleasedLocked() {
	for c.status == StatusDisconnecting {
		released := c.released
		c.mu.Unlock()
		<-released
		c.mu.Lock()
	}
}

func (c *Cache[H]) Status() Status {
	if c == nil {
		return StatusUnknown
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Cache[H]) observe(result string) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveConnect(c.opts.Name, result)
	}
}

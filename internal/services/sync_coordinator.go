package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasksync/internal/infrastructure/monitor"
	"github.com/fastygo/tasksync/repository"
)

// EventSource delivers connectivity transitions.
type EventSource interface {
	Subscribe(fn func(monitor.Event)) (unsubscribe func())
}

// Drainer replays queued writes.
type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// SyncCoordinator refreshes cached results and replays the offline queue whenever
// connectivity comes back.
type SyncCoordinator struct {
	events      EventSource
	invalidator repository.Invalidator
	drainer     Drainer
	logger      *zap.Logger
	timeout     time.Duration

	mu          sync.Mutex
	unsubscribe func()
	stopped     bool
	wg          sync.WaitGroup
}

func NewSyncCoordinator(
	events EventSource,
	invalidator repository.Invalidator,
	drainer Drainer,
	timeout time.Duration,
	logger *zap.Logger,
) *SyncCoordinator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncCoordinator{
		events:      events,
		invalidator: invalidator,
		drainer:     drainer,
		logger:      logger,
		timeout:     timeout,
	}
}

func (c *SyncCoordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil || c.events == nil {
		return
	}
	c.stopped = false
	c.unsubscribe = c.events.Subscribe(c.handle)
}

// Stop unsubscribes and waits for a running resync to finish. Events delivered after Stop
// are ignored; the monitor may still hold a copy of the subscriber list.
func (c *SyncCoordinator) Stop() {
	c.mu.Lock()
	c.stopped = true
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *SyncCoordinator) handle(event monitor.Event) {
	if event != monitor.BecameReachable {
		return
	}
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		c.Resync(ctx)
	}()
}

// Resync marks every cached Task and Category result stale, then drains the offline queue.
// Invalidation runs even when nothing is queued: other clients may have written while we
// were away.
func (c *SyncCoordinator) Resync(ctx context.Context) {
	if c.invalidator != nil {
		if err := c.invalidator.Invalidate(ctx, repository.TagTask, repository.TagCategory); err != nil {
			c.logger.Warn("cache invalidation on reconnect failed", zap.Error(err))
		}
	}
	if c.drainer == nil {
		return
	}
	replayed, err := c.drainer.Drain(ctx)
	if err != nil {
		c.logger.Error("buffer drain on reconnect failed", zap.Error(err))
		return
	}
	c.logger.Info("resynchronized after reconnect", zap.Int("replayed", replayed))
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/internal/infrastructure/buffer"
	"github.com/fastygo/tasksync/repository"
	"github.com/fastygo/tasksync/usecase"
)

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays writes queued while offline against the document store.
type BufferProcessor struct {
	store       *buffer.Store
	monitor     usecase.ConnectionState
	tasks       repository.TaskRepository
	categories  repository.CategoryRepository
	invalidator repository.Invalidator
	logger      *zap.Logger
	cron        *cron.Cron
	cfg         ProcessorConfig

	drainMu sync.Mutex
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor usecase.ConnectionState,
	tasks repository.TaskRepository,
	categories repository.CategoryRepository,
	invalidator repository.Invalidator,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:       store,
		monitor:     monitor,
		tasks:       tasks,
		categories:  categories,
		invalidator: invalidator,
		logger:      logger,
		cfg:         cfg,
		cron:        cron.New(cron.WithSeconds()),
	}

	_, _ = bp.cron.AddFunc("@every "+cfg.Interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", func() {
		if _, err := bp.Cleanup(); err != nil {
			bp.logger.Error("buffer cleanup failed", zap.Error(err))
		}
	})

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch in enqueue order and returns how many items were applied.
// A failing item keeps its position and ends the batch so later writes never overtake it.
func (bp *BufferProcessor) Drain(ctx context.Context) (int, error) {
	if bp == nil || bp.store == nil {
		return 0, nil
	}
	bp.drainMu.Lock()
	defer bp.drainMu.Unlock()

	if bp.monitor != nil && !bp.monitor.IsConnected() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return 0, nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	var replayed int
	for _, item := range items {
		if err := bp.processItem(ctx, item); err != nil {
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.String("operation", item.Operation),
				zap.Error(err))

			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries || domain.IsDomainError(err, domain.ErrCodeInvalid) {
				bp.logger.Warn("dropping buffer item", zap.String("item_id", item.ID), zap.Int("retries", item.Retries))
				if err := bp.store.Remove(item); err != nil {
					bp.logger.Warn("failed to remove buffer item", zap.Error(err))
				}
				continue
			}
			if err := bp.store.Save(item); err != nil {
				bp.logger.Error("failed to record buffer retry", zap.Error(err))
			}
			break
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
		replayed++
	}

	if replayed > 0 {
		bp.logger.Info("buffer replayed", zap.Int("items", replayed))
		if bp.invalidator != nil {
			if err := bp.invalidator.Invalidate(ctx, repository.TagTask, repository.TagCategory); err != nil {
				bp.logger.Warn("cache invalidation after replay failed", zap.Error(err))
			}
		}
	}
	return replayed, nil
}

// Enqueue persists an item for later replay without contacting the document store.
func (bp *BufferProcessor) Enqueue(item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}
	return bp.store.Enqueue(item)
}

// Cleanup drops items older than the retention window.
func (bp *BufferProcessor) Cleanup() (int, error) {
	if bp == nil || bp.store == nil {
		return 0, nil
	}
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if removed > 0 {
		bp.logger.Warn("expired buffer items removed", zap.Int("items", removed))
	}
	return removed, err
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityTask:
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "corrupt buffered task", err)
		}
		switch item.Operation {
		case buffer.OperationCreate:
			return bp.tasks.Create(ctx, &task)
		case buffer.OperationUpdate:
			err := bp.tasks.Update(ctx, &task)
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				bp.logger.Warn("buffered update targets a deleted task", zap.String("task_id", task.ID))
				return nil
			}
			return err
		case buffer.OperationDelete:
			return ignoreNotFound(bp.tasks.Delete(ctx, task.ID))
		}

	case buffer.EntityCategory:
		var category domain.Category
		if err := json.Unmarshal(item.Data, &category); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "corrupt buffered category", err)
		}
		switch item.Operation {
		case buffer.OperationCreate:
			return bp.categories.Create(ctx, &category)
		case buffer.OperationDelete:
			_, err := bp.categories.DeleteCascade(ctx, category.ID)
			return ignoreNotFound(err)
		}

	default:
		return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unsupported entity %s", item.Entity))
	}
	return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unsupported operation %s", item.Operation))
}

func ignoreNotFound(err error) error {
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil
	}
	return err
}

package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
	"github.com/fastygo/tasksync/usecase"
)

// LocalStore is the write side of the on-device cache. Writes land there first so cache-mode
// reads reflect them immediately.
type LocalStore interface {
	GetTask(id string) (*domain.Task, error)
	PutTasks(tasks ...domain.Task) error
	DeleteTask(id string) error
	PutCategories(categories ...domain.Category) error
	DetachCategory(id string, now time.Time) (int, error)
}

// Gateway issues every task and category write. Online writes are awaited and their errors
// surface; offline writes are queued and reported as successful.
type Gateway struct {
	tasks       repository.TaskRepository
	categories  repository.CategoryRepository
	local       LocalStore
	buffer      usecase.OperationBuffer
	conn        usecase.ConnectionState
	invalidator repository.Invalidator
	logger      *zap.Logger
	now         func() time.Time
}

func NewGateway(
	tasks repository.TaskRepository,
	categories repository.CategoryRepository,
	local LocalStore,
	buffer usecase.OperationBuffer,
	conn usecase.ConnectionState,
	invalidator repository.Invalidator,
	logger *zap.Logger,
) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		tasks:       tasks,
		categories:  categories,
		local:       local,
		buffer:      buffer,
		conn:        conn,
		invalidator: invalidator,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create stores a new task. A missing id is generated; timestamps and the lowercase title are
// always set here.
func (g *Gateway) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.StatusUncompleted
	}
	now := g.now()
	task.CreatedAt = now
	task.Touch(now)
	if err := task.Validate(); err != nil {
		return err
	}

	err := g.write(ctx, usecase.OperationCreate,
		func(ctx context.Context) error { return g.tasks.Create(ctx, task) },
		func(ctx context.Context) error { return g.buffer.BufferTask(ctx, usecase.OperationCreate, task) },
		func() error { return g.putLocal(*task) },
		repository.TagTask,
	)
	if err != nil {
		return err
	}
	g.logger.Debug("task created", zap.String("task_id", task.ID))
	return nil
}

// Update replaces a stored task and stamps UpdatedAt. A missing CreatedAt is taken from the local
// cache, and online the store reports the authoritative one before the cache is written.
func (g *Gateway) Update(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	if task.CreatedAt.IsZero() && g.local != nil {
		if existing, err := g.local.GetTask(task.ID); err == nil {
			task.CreatedAt = existing.CreatedAt
		}
	}
	task.Touch(g.now())
	if err := task.Validate(); err != nil {
		return err
	}

	return g.write(ctx, usecase.OperationUpdate,
		func(ctx context.Context) error { return g.tasks.Update(ctx, task) },
		func(ctx context.Context) error { return g.buffer.BufferTask(ctx, usecase.OperationUpdate, task) },
		func() error { return g.putLocal(*task) },
		repository.TagTask,
	)
}

// ToggleStatus flips the completion status of a stored task and returns the updated task.
func (g *Gateway) ToggleStatus(ctx context.Context, id string) (*domain.Task, error) {
	current, err := g.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Status = current.Status.Toggle()
	if err := g.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Get returns a single task from the store when online, otherwise from the local cache.
func (g *Gateway) Get(ctx context.Context, id string) (*domain.Task, error) {
	return g.lookup(ctx, id)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidPayload
	}
	return g.write(ctx, usecase.OperationDelete,
		func(ctx context.Context) error { return g.tasks.Delete(ctx, id) },
		func(ctx context.Context) error {
			return g.buffer.BufferTask(ctx, usecase.OperationDelete, &domain.Task{ID: id})
		},
		func() error {
			if g.local == nil {
				return nil
			}
			return g.local.DeleteTask(id)
		},
		repository.TagTask,
	)
}

func (g *Gateway) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category == nil {
		return domain.ErrInvalidPayload
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.Touch(g.now())
	if err := category.Validate(); err != nil {
		return err
	}

	return g.write(ctx, usecase.OperationCreate,
		func(ctx context.Context) error { return g.categories.Create(ctx, category) },
		func(ctx context.Context) error {
			return g.buffer.BufferCategory(ctx, usecase.OperationCreate, category)
		},
		func() error {
			if g.local == nil {
				return nil
			}
			return g.local.PutCategories(*category)
		},
		repository.TagCategory,
	)
}

// DeleteCategory removes a category and clears categoryId on every task that referenced it.
// Both steps are committed together, remotely and locally.
func (g *Gateway) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidPayload
	}
	return g.write(ctx, usecase.OperationDelete,
		func(ctx context.Context) error {
			detached, err := g.categories.DeleteCascade(ctx, id)
			if err == nil {
				g.logger.Info("category deleted", zap.String("category_id", id), zap.Int("detached_tasks", detached))
			}
			return err
		},
		func(ctx context.Context) error {
			return g.buffer.BufferCategory(ctx, usecase.OperationDelete, &domain.Category{ID: id})
		},
		func() error {
			if g.local == nil {
				return nil
			}
			_, err := g.local.DetachCategory(id, g.now())
			return err
		},
		repository.TagTask, repository.TagCategory,
	)
}

// write routes a mutation by connectivity. Online, the remote call is awaited and the local
// cache follows it. Offline, the local cache is written first and the operation queued.
// Either way the result cache is invalidated for tags once the write is accepted.
func (g *Gateway) write(
	ctx context.Context,
	operation string,
	remote func(context.Context) error,
	enqueue func(context.Context) error,
	local func() error,
	tags ...string,
) error {
	if g.online() {
		if err := remote(ctx); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) || domain.IsDomainError(err, domain.ErrCodeInvalid) {
				return err
			}
			g.logger.Error("write rejected by store", zap.String("operation", operation), zap.Error(err))
			return domain.MutationFailed(err)
		}
		if err := local(); err != nil {
			g.logger.Warn("local cache write failed", zap.String("operation", operation), zap.Error(err))
		}
	} else {
		if g.buffer == nil {
			return domain.NewError(domain.ErrCodeInternal, "offline buffer not configured")
		}
		if err := local(); err != nil {
			g.logger.Warn("local cache write failed", zap.String("operation", operation), zap.Error(err))
		}
		if err := enqueue(ctx); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "failed to queue offline write", err)
		}
		g.logger.Info("write queued while offline", zap.String("operation", operation))
	}

	g.invalidate(ctx, tags...)
	return nil
}

func (g *Gateway) invalidate(ctx context.Context, tags ...string) {
	if g.invalidator == nil || len(tags) == 0 {
		return
	}
	if err := g.invalidator.Invalidate(ctx, tags...); err != nil {
		g.logger.Warn("cache invalidation failed", zap.Strings("tags", tags), zap.Error(err))
	}
}

func (g *Gateway) lookup(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrInvalidPayload
	}
	if g.online() {
		task, err := g.tasks.GetByID(ctx, id)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil, err
			}
			return nil, domain.QueryFailed(err)
		}
		return task, nil
	}
	if g.local == nil {
		return nil, domain.ErrTaskNotFound
	}
	return g.local.GetTask(id)
}

func (g *Gateway) putLocal(task domain.Task) error {
	if g.local == nil {
		return nil
	}
	return g.local.PutTasks(task)
}

func (g *Gateway) online() bool {
	return g.conn == nil || g.conn.IsConnected()
}

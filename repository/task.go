package repository

import (
	"context"

	"github.com/fastygo/tasksync/domain"
)

// TaskReader executes a query plan. Implementations return at most limit tasks that match
// the plan and sort strictly after the cursor (nil means from the start), in plan order.
type TaskReader interface {
	Find(ctx context.Context, plan domain.Plan, after *domain.Cursor, limit int) ([]domain.Task, error)
}

type TaskRepository interface {
	TaskReader
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	// Update never rewrites the creation time; it copies the stored one back into task.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

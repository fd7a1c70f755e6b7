package repository

import (
	"context"

	"github.com/fastygo/tasksync/domain"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	// DeleteCascade clears category_id on every referencing task and removes the category
	// in one atomic unit. It returns the number of detached tasks.
	DeleteCascade(ctx context.Context, id string) (int, error)
}

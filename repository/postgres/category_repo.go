package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
	SELECT id, name, created_at, updated_at
	FROM categories
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, storeErr(err)
		}
		categories = append(categories, c)
	}
	return categories, storeErr(rows.Err())
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category == nil || category.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO categories (id, name, created_at, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.CreatedAt, category.UpdatedAt)
	return storeErr(err)
}

func (r *categoryRepository) DeleteCascade(ctx context.Context, id string) (int, error) {
	var detached int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`, id)
		if err != nil {
			return err
		}
		detached = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return 0, err
		}
		return 0, storeErr(err)
	}
	return detached, nil
}

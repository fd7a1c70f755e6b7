package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) Find(ctx context.Context, plan domain.Plan, after *domain.Cursor, limit int) ([]domain.Task, error) {
	query, args, err := buildFindQuery(plan, after, limit)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, storeErr(rows.Err())
}

// Create writes the full document, overwriting an existing one with the same id.
// Replayed offline creates therefore stay idempotent.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		title_lowercase = EXCLUDED.title_lowercase,
		description = EXCLUDED.description,
		status = EXCLUDED.status,
		priority = EXCLUDED.priority,
		category_id = EXCLUDED.category_id,
		deadline = EXCLUDED.deadline,
		image_url = EXCLUDED.image_url,
		updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.TitleLowercase,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullString(task.CategoryID),
		task.Deadline,
		task.ImageURL,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return storeErr(err)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		title_lowercase = $3,
		description = $4,
		status = $5,
		priority = $6,
		category_id = $7,
		deadline = $8,
		image_url = $9,
		updated_at = $10
	WHERE id = $1
	RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.TitleLowercase,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullString(task.CategoryID),
		task.Deadline,
		task.ImageURL,
		task.UpdatedAt,
	).Scan(&task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return storeErr(err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task       domain.Task
		status     string
		priority   string
		categoryID *string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.TitleLowercase,
		&task.Description,
		&status,
		&priority,
		&categoryID,
		&task.Deadline,
		&task.ImageURL,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr(err)
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if categoryID != nil {
		task.CategoryID = *categoryID
	}
	return &task, nil
}

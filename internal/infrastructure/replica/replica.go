package replica

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
)

var (
	tasksBucket      = []byte("tasks")
	categoriesBucket = []byte("categories")
)

// Replica is the on-device copy of every document fetched from or written to the remote store.
// It serves reads in cache mode and survives restarts: Open hydrates it, Close flushes it.
type Replica struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and its buckets.
func Open(path string) (*Replica, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{tasksBucket, categoriesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Replica{db: db}, nil
}

// Find evaluates the plan over the cached tasks.
func (r *Replica) Find(ctx context.Context, plan domain.Plan, after *domain.Cursor, limit int) ([]domain.Task, error) {
	if r == nil || r.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tasksBucket).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return nil
			}
			if !plan.Match(task) {
				return nil
			}
			if after != nil && !plan.After(task, *after) {
				return nil
			}
			matched = append(matched, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool { return plan.Less(matched[i], matched[j]) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetTask returns a cached task.
func (r *Replica) GetTask(id string) (*domain.Task, error) {
	if r == nil || r.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(tasksBucket).Get([]byte(id))
		if v == nil {
			return domain.ErrTaskNotFound
		}
		task = &domain.Task{}
		return json.Unmarshal(v, task)
	})
	return task, err
}

// PutTasks upserts tasks.
func (r *Replica) PutTasks(tasks ...domain.Task) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tasksBucket)
		for _, task := range tasks {
			payload, err := json.Marshal(task)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(task.ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceRange makes the cached slice of a listing equal to tasks. Cached tasks that match plan
// and sort at or before through (every match when through is nil) but are absent from tasks
// were removed remotely and are deleted. tasks are upserted in the same transaction.
func (r *Replica) ReplaceRange(plan domain.Plan, through *domain.Cursor, tasks ...domain.Task) (int, error) {
	if r == nil || r.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	keep := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		keep[task.ID] = struct{}{}
	}

	var removed int
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tasksBucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if _, ok := keep[string(k)]; ok {
				return nil
			}
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return nil
			}
			if !plan.Match(task) {
				return nil
			}
			if through != nil && plan.After(task, *through) {
				return nil
			}
			stale = append(stale, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)

		for _, task := range tasks {
			payload, err := json.Marshal(task)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(task.ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

func (r *Replica) DeleteTask(id string) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tasksBucket).Delete([]byte(id))
	})
}

// PutCategories upserts categories.
func (r *Replica) PutCategories(categories ...domain.Category) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(categoriesBucket)
		for _, c := range categories {
			payload, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(c.ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCategories returns cached categories ordered by creation time.
func (r *Replica) ListCategories() ([]domain.Category, error) {
	if r == nil || r.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var categories []domain.Category
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(categoriesBucket).ForEach(func(_, v []byte) error {
			var c domain.Category
			if err := json.Unmarshal(v, &c); err == nil {
				categories = append(categories, c)
			}
			return nil
		})
	})
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].CreatedAt.Equal(categories[j].CreatedAt) {
			return categories[i].ID < categories[j].ID
		}
		return categories[i].CreatedAt.Before(categories[j].CreatedAt)
	})
	return categories, err
}

// DetachCategory clears categoryId on every referencing task and removes the category
// in a single transaction. It returns the number of detached tasks.
func (r *Replica) DetachCategory(id string, now time.Time) (int, error) {
	if r == nil || r.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var detached int
	err := r.db.Update(func(tx *bolt.Tx) error {
		tasks := tx.Bucket(tasksBucket)
		var updates []domain.Task
		if err := tasks.ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return nil
			}
			if task.CategoryID == id {
				task.CategoryID = ""
				task.UpdatedAt = now
				updates = append(updates, task)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, task := range updates {
			payload, err := json.Marshal(task)
			if err != nil {
				return err
			}
			if err := tasks.Put([]byte(task.ID), payload); err != nil {
				return err
			}
		}
		detached = len(updates)
		return tx.Bucket(categoriesBucket).Delete([]byte(id))
	})
	return detached, err
}

// Close flushes and closes the database.
func (r *Replica) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

var _ repository.TaskReader = (*Replica)(nil)

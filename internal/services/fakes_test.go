package services

import (
	"context"
	"sync"

	"github.com/fastygo/tasksync/domain"
)

type onlineState bool

func (s onlineState) IsConnected() bool { return bool(s) }

type fakeTasks struct {
	mu       sync.Mutex
	applied  []string
	createFn func(task *domain.Task) error
	deleteFn func(id string) error
}

func (f *fakeTasks) record(op, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, op+":"+id)
}

func (f *fakeTasks) Find(context.Context, domain.Plan, *domain.Cursor, int) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTasks) GetByID(context.Context, string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTasks) Create(_ context.Context, task *domain.Task) error {
	if f.createFn != nil {
		if err := f.createFn(task); err != nil {
			return err
		}
	}
	f.record("create", task.ID)
	return nil
}

func (f *fakeTasks) Update(_ context.Context, task *domain.Task) error {
	f.record("update", task.ID)
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	if f.deleteFn != nil {
		if err := f.deleteFn(id); err != nil {
			return err
		}
	}
	f.record("delete", id)
	return nil
}

type fakeCategories struct {
	deleted []string
}

func (f *fakeCategories) List(context.Context) ([]domain.Category, error) { return nil, nil }

func (f *fakeCategories) Create(context.Context, *domain.Category) error { return nil }

func (f *fakeCategories) DeleteCascade(_ context.Context, id string) (int, error) {
	f.deleted = append(f.deleted, id)
	return 1, nil
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tags)
	return nil
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/internal/infrastructure/buffer"
	"github.com/fastygo/tasksync/usecase"
)

func newTestProcessor(t *testing.T, tasks *fakeTasks, categories *fakeCategories, inv *recordingInvalidator, online bool) (*BufferProcessor, *BufferBridge) {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "buffer")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	bp := NewBufferProcessor(store, onlineState(online), tasks, categories, inv, nil, ProcessorConfig{MaxRetries: 2})
	return bp, NewBufferBridge(bp)
}

func TestDrainReplaysInEnqueueOrder(t *testing.T) {
	tasks := &fakeTasks{}
	categories := &fakeCategories{}
	inv := &recordingInvalidator{}
	bp, bridge := newTestProcessor(t, tasks, categories, inv, true)
	ctx := context.Background()

	_ = bridge.BufferTask(ctx, usecase.OperationCreate, &domain.Task{ID: "a"})
	_ = bridge.BufferTask(ctx, usecase.OperationUpdate, &domain.Task{ID: "a"})
	_ = bridge.BufferCategory(ctx, usecase.OperationDelete, &domain.Category{ID: "c1"})
	_ = bridge.BufferTask(ctx, usecase.OperationDelete, &domain.Task{ID: "a"})

	replayed, err := bp.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if replayed != 4 {
		t.Fatalf("expected 4 replayed, got %d", replayed)
	}
	if got := strings.Join(tasks.applied, ","); got != "create:a,update:a,delete:a" {
		t.Fatalf("unexpected replay order %s", got)
	}
	if len(categories.deleted) != 1 || categories.deleted[0] != "c1" {
		t.Fatalf("expected category delete replayed, got %v", categories.deleted)
	}
	if bp.Size() != 0 {
		t.Fatalf("expected empty buffer, got %d", bp.Size())
	}
	if inv.count() != 1 {
		t.Fatalf("expected one invalidation after replay, got %d", inv.count())
	}
}

func TestDrainStopsAtFailureAndRetriesLater(t *testing.T) {
	fail := true
	tasks := &fakeTasks{createFn: func(task *domain.Task) error {
		if fail && task.ID == "a" {
			return errors.New("timeout")
		}
		return nil
	}}
	inv := &recordingInvalidator{}
	bp, bridge := newTestProcessor(t, tasks, &fakeCategories{}, inv, true)
	ctx := context.Background()

	_ = bridge.BufferTask(ctx, usecase.OperationCreate, &domain.Task{ID: "a"})
	_ = bridge.BufferTask(ctx, usecase.OperationCreate, &domain.Task{ID: "b"})

	replayed, _ := bp.Drain(ctx)
	if replayed != 0 || len(tasks.applied) != 0 {
		t.Fatalf("later items must not overtake a failing one, applied %v", tasks.applied)
	}
	if bp.Size() != 2 {
		t.Fatalf("expected both items kept, got %d", bp.Size())
	}
	if inv.count() != 0 {
		t.Fatalf("nothing replayed, nothing to invalidate")
	}

	fail = false
	if replayed, _ := bp.Drain(ctx); replayed != 2 {
		t.Fatalf("expected both items on retry, got %d", replayed)
	}
	if got := strings.Join(tasks.applied, ","); got != "create:a,create:b" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestDrainDropsItemAfterMaxRetries(t *testing.T) {
	tasks := &fakeTasks{createFn: func(task *domain.Task) error {
		if task.ID == "poison" {
			return errors.New("rejected")
		}
		return nil
	}}
	bp, bridge := newTestProcessor(t, tasks, &fakeCategories{}, &recordingInvalidator{}, true)
	ctx := context.Background()

	_ = bridge.BufferTask(ctx, usecase.OperationCreate, &domain.Task{ID: "poison"})
	_ = bridge.BufferTask(ctx, usecase.OperationCreate, &domain.Task{ID: "ok"})

	_, _ = bp.Drain(ctx)
	replayed, _ := bp.Drain(ctx)
	if replayed != 1 || strings.Join(tasks.applied, ",") != "create:ok" {
		t.Fatalf("expected poison item dropped on second attempt, applied %v", tasks.applied)
	}
	if bp.Size() != 0 {
		t.Fatalf("expected empty buffer, got %d", bp.Size())
	}
}

func TestDrainTreatsMissingDeleteAsDone(t *testing.T) {
	tasks := &fakeTasks{deleteFn: func(string) error { return domain.ErrTaskNotFound }}
	bp, bridge := newTestProcessor(t, tasks, &fakeCategories{}, &recordingInvalidator{}, true)

	_ = bridge.BufferTask(context.Background(), usecase.OperationDelete, &domain.Task{ID: "gone"})
	replayed, err := bp.Drain(context.Background())
	if err != nil || replayed != 1 || bp.Size() != 0 {
		t.Fatalf("expected delete of missing task to count as replayed, got %d (%v)", replayed, err)
	}
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	tasks := &fakeTasks{}
	bp, bridge := newTestProcessor(t, tasks, &fakeCategories{}, &recordingInvalidator{}, false)

	_ = bridge.BufferTask(context.Background(), usecase.OperationCreate, &domain.Task{ID: "a"})
	if replayed, _ := bp.Drain(context.Background()); replayed != 0 || bp.Size() != 1 {
		t.Fatalf("offline drain must leave the buffer untouched")
	}
}

func TestCleanupHonoursRetention(t *testing.T) {
	bp, _ := newTestProcessor(t, &fakeTasks{}, &fakeCategories{}, &recordingInvalidator{}, true)
	_ = bp.Enqueue(buffer.Item{Entity: buffer.EntityTask, Operation: buffer.OperationCreate, Timestamp: time.Now().Add(-100 * time.Hour)})
	_ = bp.Enqueue(buffer.Item{Entity: buffer.EntityTask, Operation: buffer.OperationCreate})

	removed, err := bp.Cleanup()
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 || bp.Size() != 1 {
		t.Fatalf("expected only the expired item removed, removed=%d size=%d", removed, bp.Size())
	}
}

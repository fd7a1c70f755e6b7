package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/usecase"
)

type gatewayFixture struct {
	remote  *memStore
	local   *memStore
	buffer  *fakeBuffer
	conn    *fakeConn
	results *fakeResultCache
	gateway *Gateway
}

func newGatewayFixture(connected bool) *gatewayFixture {
	f := &gatewayFixture{
		remote:  newMemStore(),
		local:   newMemStore(),
		buffer:  &fakeBuffer{},
		conn:    &fakeConn{connected: connected},
		results: newFakeResultCache(),
	}
	f.gateway = NewGateway(f.remote, categoryRepo{f.remote}, f.local, f.buffer, f.conn, f.results, nil)
	return f
}

func newTask(title string) *domain.Task {
	return &domain.Task{
		Title:    title,
		Priority: domain.PriorityHigh,
		Deadline: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateOnlineStampsAndPersists(t *testing.T) {
	f := newGatewayFixture(true)
	task := newTask("Buy Milk")

	if err := f.gateway.Create(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" || task.CreatedAt.IsZero() || !task.UpdatedAt.Equal(task.CreatedAt) {
		t.Fatalf("expected id and timestamps to be set, got %+v", task)
	}
	if task.TitleLowercase != "buy milk" {
		t.Fatalf("expected lowercase title, got %q", task.TitleLowercase)
	}
	if task.Status != domain.StatusUncompleted {
		t.Fatalf("expected default status, got %q", task.Status)
	}
	if !f.remote.has(task.ID) || !f.local.has(task.ID) {
		t.Fatalf("task not written to both stores")
	}
	if len(f.buffer.calls) != 0 {
		t.Fatalf("online writes must not be buffered")
	}
	if len(f.results.invalidated) != 1 || f.results.invalidated[0][0] != "Task" {
		t.Fatalf("expected Task invalidation, got %v", f.results.invalidated)
	}
}

func TestCreateOfflineQueuesAndSucceeds(t *testing.T) {
	f := newGatewayFixture(false)
	f.remote.err = errors.New("remote must not be called")
	task := newTask("Offline")

	if err := f.gateway.Create(context.Background(), task); err != nil {
		t.Fatalf("offline create must succeed, got %v", err)
	}
	if !f.local.has(task.ID) {
		t.Fatalf("offline write must land in the local cache")
	}
	want := bufferCall{entity: "task", operation: usecase.OperationCreate, id: task.ID}
	if len(f.buffer.calls) != 1 || f.buffer.calls[0] != want {
		t.Fatalf("expected %+v buffered, got %+v", want, f.buffer.calls)
	}
}

func TestCreateOnlineFailureSurfacesMutationFailed(t *testing.T) {
	f := newGatewayFixture(true)
	f.remote.err = &domain.StoreError{Code: "42501", Err: errors.New("permission denied")}

	err := f.gateway.Create(context.Background(), newTask("Denied"))
	if !domain.IsDomainError(err, domain.ErrCodeMutationFailed) {
		t.Fatalf("expected MUTATION_FAILED, got %v", err)
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.StoreCode != "42501" {
		t.Fatalf("expected store code, got %q", dErr.StoreCode)
	}
	if len(f.results.invalidated) != 0 {
		t.Fatalf("failed writes must not invalidate")
	}
	if len(f.buffer.calls) != 0 {
		t.Fatalf("failed online writes must not be buffered")
	}
}

func TestCreateRejectsInvalidTask(t *testing.T) {
	f := newGatewayFixture(true)
	task := newTask("  ")

	if err := f.gateway.Create(context.Background(), task); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
}

func TestUpdateMissingTaskReturnsNotFound(t *testing.T) {
	f := newGatewayFixture(true)
	task := newTask("Ghost")
	task.ID = "missing"
	task.Status = domain.StatusCompleted

	if err := f.gateway.Update(context.Background(), task); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateKeepsCreatedAtAndBumpsUpdatedAt(t *testing.T) {
	f := newGatewayFixture(true)
	task := newTask("Original")
	if err := f.gateway.Create(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}
	created := task.CreatedAt

	f.gateway.now = func() time.Time { return created.Add(time.Hour) }
	edit := *task
	edit.CreatedAt = time.Time{}
	edit.Title = "Edited"
	if err := f.gateway.Update(context.Background(), &edit); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !edit.CreatedAt.Equal(created) {
		t.Fatalf("createdAt changed: %v -> %v", created, edit.CreatedAt)
	}
	if !edit.UpdatedAt.Equal(created.Add(time.Hour)) {
		t.Fatalf("updatedAt not stamped: %v", edit.UpdatedAt)
	}
	stored, _ := f.remote.GetTask(task.ID)
	if stored.TitleLowercase != "edited" {
		t.Fatalf("lowercase title not refreshed: %q", stored.TitleLowercase)
	}
}

func TestUpdateTakesCreatedAtFromStoreWhenNotCached(t *testing.T) {
	f := newGatewayFixture(true)
	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	stored := newTask("Remote only")
	stored.ID = "r1"
	stored.Status = domain.StatusUncompleted
	stored.CreatedAt = created
	_ = f.remote.Create(context.Background(), stored)

	edit := *stored
	edit.CreatedAt = time.Time{}
	edit.Title = "Edited remotely"
	if err := f.gateway.Update(context.Background(), &edit); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !edit.CreatedAt.Equal(created) {
		t.Fatalf("expected stored createdAt %v, got %v", created, edit.CreatedAt)
	}
	cached, err := f.local.GetTask("r1")
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if !cached.CreatedAt.Equal(created) {
		t.Fatalf("local cache got createdAt %v", cached.CreatedAt)
	}
}

func TestToggleStatusFlipsStoredTask(t *testing.T) {
	f := newGatewayFixture(true)
	task := newTask("Toggle me")
	_ = f.gateway.Create(context.Background(), task)

	updated, err := f.gateway.ToggleStatus(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	stored, _ := f.remote.GetTask(task.ID)
	if stored.Status != domain.StatusCompleted {
		t.Fatalf("toggle not persisted")
	}
}

func TestDeleteCategoryDetachesTasksAndInvalidatesBothTags(t *testing.T) {
	f := newGatewayFixture(true)
	ctx := context.Background()
	category := &domain.Category{Name: "Home"}
	if err := f.gateway.CreateCategory(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}
	task := newTask("Sweep")
	task.CategoryID = category.ID
	if err := f.gateway.Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	f.results.invalidated = nil

	if err := f.gateway.DeleteCategory(ctx, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	for _, store := range []*memStore{f.remote, f.local} {
		stored, _ := store.GetTask(task.ID)
		if stored.CategoryID != "" {
			t.Fatalf("task still references deleted category")
		}
	}
	if len(f.results.invalidated) != 1 || len(f.results.invalidated[0]) != 2 {
		t.Fatalf("expected Task and Category invalidation, got %v", f.results.invalidated)
	}
}

func TestDeleteCategoryOfflineQueuesSingleItem(t *testing.T) {
	f := newGatewayFixture(false)
	_ = f.local.PutCategories(domain.Category{ID: "c1", Name: "Work"})
	_ = f.local.PutTasks(domain.Task{ID: "t1", CategoryID: "c1"})

	if err := f.gateway.DeleteCategory(context.Background(), "c1"); err != nil {
		t.Fatalf("offline delete: %v", err)
	}
	if len(f.buffer.calls) != 1 || f.buffer.calls[0].entity != "category" {
		t.Fatalf("expected one buffered category delete, got %+v", f.buffer.calls)
	}
	stored, _ := f.local.GetTask("t1")
	if stored.CategoryID != "" {
		t.Fatalf("local cache still references deleted category")
	}
}

func TestInvalidationFailureDoesNotFailWrite(t *testing.T) {
	f := newGatewayFixture(true)
	f.results.failInvalid = true

	if err := f.gateway.Create(context.Background(), newTask("Still fine")); err != nil {
		t.Fatalf("invalidation errors must be swallowed, got %v", err)
	}
}

func TestDeleteOnlineMissingTaskReturnsNotFound(t *testing.T) {
	f := newGatewayFixture(true)

	if err := f.gateway.Delete(context.Background(), "nope"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

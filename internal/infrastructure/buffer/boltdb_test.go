package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func TestEnqueuePreservesOrder(t *testing.T) {
	store := newTestStore(t)

	for _, op := range []string{OperationCreate, OperationUpdate, OperationDelete} {
		if err := store.Enqueue(Item{Entity: EntityTask, Operation: op, Data: json.RawMessage(`{}`)}); err != nil {
			t.Fatalf("enqueue %s: %v", op, err)
		}
	}

	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []string{OperationCreate, OperationUpdate, OperationDelete}
	for i, item := range items {
		if item.Operation != want[i] {
			t.Fatalf("item %d: expected %s, got %s", i, want[i], item.Operation)
		}
		if item.ID == "" {
			t.Fatalf("item %d: expected generated id", i)
		}
	}
}

func TestSaveKeepsPositionAndRemove(t *testing.T) {
	store := newTestStore(t)

	_ = store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate})
	_ = store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate})

	items, _ := store.GetBatch(10)
	first := items[0]
	first.Retries = 2
	if err := store.Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	items, _ = store.GetBatch(10)
	if items[0].ID != first.ID || items[0].Retries != 2 {
		t.Fatalf("expected saved item to stay first with retries=2, got %+v", items[0])
	}

	if err := store.Remove(items[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Fatalf("expected 1 item left, got %d", size)
	}
}

func TestCleanupDropsOldItems(t *testing.T) {
	store := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	_ = store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate, Timestamp: old})
	_ = store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate, Timestamp: old})
	_ = store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate})

	removed, err := store.Cleanup(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	items, _ := store.GetBatch(10)
	if len(items) != 1 || items[0].Operation != OperationUpdate {
		t.Fatalf("expected only the recent update to remain, got %+v", items)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "buffer")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

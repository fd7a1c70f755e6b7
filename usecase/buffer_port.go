package usecase

import (
	"context"

	"github.com/fastygo/tasksync/domain"
)

// Operation names for buffered writes.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer queues writes issued while the document store is unreachable so use cases
// stay storage-agnostic. Implementations must return without contacting the store.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferCategory(ctx context.Context, operation string, category *domain.Category) error
}

// ConnectionState exposes the connectivity flag evaluated before each read or write.
type ConnectionState interface {
	IsConnected() bool
}

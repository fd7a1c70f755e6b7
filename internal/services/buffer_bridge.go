package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/internal/infrastructure/buffer"
	"github.com/fastygo/tasksync/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(buffer.EntityTask, operation, task)
}

// BufferCategory queues a category write. A delete is a single item so that detaching its
// tasks replays as one unit.
func (b *BufferBridge) BufferCategory(ctx context.Context, operation string, category *domain.Category) error {
	if b.processor == nil || category == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(buffer.EntityCategory, operation, category)
}

func (b *BufferBridge) enqueue(entity, operation string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.processor.Enqueue(buffer.Item{
		Entity:    entity,
		Operation: operation,
		Data:      data,
		Priority:  buffer.DefaultPriority,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)

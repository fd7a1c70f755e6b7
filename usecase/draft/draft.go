package draft

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
)

const taskDraftKey = "task"

// UseCase keeps one unsaved task form per user.
type UseCase struct {
	store  repository.DraftStore
	logger *zap.Logger
	now    func() time.Time
}

func New(store repository.DraftStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{store: store, logger: logger, now: time.Now}
}

func (uc *UseCase) Save(ctx context.Context, userID string, draft domain.TaskDraft) (*domain.TaskDraft, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	draft.SavedAt = uc.now().UTC()
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to encode draft", err)
	}
	if err := uc.store.Set(ctx, key(userID), string(payload)); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to save draft", err)
	}
	return &draft, nil
}

// Load returns the saved draft. A corrupt entry is discarded and reported as missing.
func (uc *UseCase) Load(ctx context.Context, userID string) (*domain.TaskDraft, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	raw, err := uc.store.Get(ctx, key(userID))
	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load draft", err)
	}

	var draft domain.TaskDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		uc.logger.Warn("discarding unreadable draft", zap.String("user_id", userID), zap.Error(err))
		_ = uc.store.Delete(ctx, key(userID))
		return nil, domain.ErrDraftNotFound
	}
	return &draft, nil
}

func (uc *UseCase) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if err := uc.store.Delete(ctx, key(userID)); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to clear draft", err)
	}
	return nil
}

func (uc *UseCase) Has(ctx context.Context, userID string) (bool, error) {
	_, err := uc.Load(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrDraftNotFound) {
		return false, nil
	}
	return false, err
}

func key(userID string) string {
	return userID + ":" + taskDraftKey
}

package repository

import "context"

// DraftStore is a plain string key-value store. Get returns domain.ErrDraftNotFound for missing keys.
type DraftStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

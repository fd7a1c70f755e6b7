package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
)

type draftStore struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewDraftStore creates a Redis-backed draft store. Drafts expire after ttl.
func NewDraftStore(client *redislib.Client, ttl time.Duration) repository.DraftStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &draftStore{
		client: client,
		prefix: "draft:",
		ttl:    ttl,
	}
}

func (s *draftStore) Get(ctx context.Context, key string) (string, error) {
	result, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", domain.ErrDraftNotFound
		}
		return "", err
	}
	return result, nil
}

func (s *draftStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return domain.ErrInvalidPayload
	}
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *draftStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *draftStore) key(id string) string {
	return fmt.Sprintf("%s%s", s.prefix, id)
}

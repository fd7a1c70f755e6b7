package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
	taskUC "github.com/fastygo/tasksync/usecase/task"
)

// Feed is a server-held infinite-scroll listing owned by one user.
type Feed struct {
	ID      string
	UserID  string
	Session *taskUC.Session
}

// FeedRegistry keeps feed sessions for thin clients. Idle feeds expire and the least recently
// used one is evicted when the registry is full.
type FeedRegistry struct {
	feeds   *expirable.LRU[string, *Feed]
	fetcher taskUC.PageFetcher
	updater taskUC.TaskUpdater
	logger  *zap.Logger
}

func NewFeedRegistry(
	fetcher taskUC.PageFetcher,
	updater taskUC.TaskUpdater,
	size int,
	ttl time.Duration,
	logger *zap.Logger,
) *FeedRegistry {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FeedRegistry{fetcher: fetcher, updater: updater, logger: logger}
	r.feeds = expirable.NewLRU[string, *Feed](size, func(id string, f *Feed) {
		r.logger.Debug("feed evicted", zap.String("feed_id", id), zap.String("user_id", f.UserID))
	}, ttl)
	return r
}

// Open starts a new feed for spec.
func (r *FeedRegistry) Open(userID string, spec domain.QuerySpec) (*Feed, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	feed := &Feed{
		ID:      uuid.NewString(),
		UserID:  userID,
		Session: taskUC.NewSession(r.fetcher, r.updater, spec, r.logger),
	}
	r.feeds.Add(feed.ID, feed)
	return feed, nil
}

// Get returns a feed owned by userID. Feeds of other users are reported as missing.
func (r *FeedRegistry) Get(userID, id string) (*Feed, error) {
	feed, ok := r.feeds.Get(id)
	if !ok || feed.UserID != userID {
		return nil, domain.ErrFeedNotFound
	}
	return feed, nil
}

func (r *FeedRegistry) Close(userID, id string) error {
	if _, err := r.Get(userID, id); err != nil {
		return err
	}
	r.feeds.Remove(id)
	return nil
}

func (r *FeedRegistry) Len() int {
	return r.feeds.Len()
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasksync/repository"
)

// stringGetter is satisfied by both the client and a watched transaction.
type stringGetter interface {
	Get(ctx context.Context, key string) *redislib.StringCmd
}

// resultCache versions every tag with a counter. Entries are stored under the version that was
// current when they were written, so bumping the counter makes all of them unreachable at once.
type resultCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewResultCache creates a Redis-backed tagged result cache.
func NewResultCache(client *redislib.Client, ttl time.Duration) repository.ResultCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &resultCache{
		client: client,
		prefix: "qcache:",
		ttl:    ttl,
	}
}

func (c *resultCache) Version(ctx context.Context, tag string) (int64, error) {
	return c.version(ctx, c.client, tag)
}

func (c *resultCache) Get(ctx context.Context, tag string, version int64, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.entryKey(tag, version, key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set writes the entry only while the tag is still at version. The version key is watched, so
// an Invalidate racing with the write aborts it.
func (c *resultCache) Set(ctx context.Context, tag string, version int64, key string, payload []byte) error {
	versionKey := c.versionKey(tag)
	err := c.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := c.version(ctx, tx, tag)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, c.entryKey(tag, version, key), payload, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redislib.TxFailedErr) {
		return nil
	}
	return err
}

func (c *resultCache) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		for _, tag := range tags {
			pipe.Incr(ctx, c.versionKey(tag))
		}
		return nil
	})
	return err
}

func (c *resultCache) version(ctx context.Context, cmd stringGetter, tag string) (int64, error) {
	v, err := cmd.Get(ctx, c.versionKey(tag)).Int64()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func (c *resultCache) versionKey(tag string) string {
	return fmt.Sprintf("%sver:%s", c.prefix, tag)
}

func (c *resultCache) entryKey(tag string, version int64, key string) string {
	return fmt.Sprintf("%s%s:%d:%s", c.prefix, tag, version, key)
}

package repository

import "context"

// Invalidation tags.
const (
	TagTask     = "Task"
	TagCategory = "Category"
)

// Invalidator marks every cached result of the given tags as stale.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// ResultCache memoises serialized query results under a tag.
//
// Readers take the tag version before querying the store and hand the same version back to
// Set. A result read before an invalidation is therefore never visible after it.
type ResultCache interface {
	Invalidator
	Version(ctx context.Context, tag string) (int64, error)
	Get(ctx context.Context, tag string, version int64, key string) ([]byte, bool, error)
	// Set stores payload under version. It is a no-op once the tag has moved past version.
	Set(ctx context.Context, tag string, version int64, key string, payload []byte) error
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/tasksync/domain"
)

type stubFetcher struct {
	tasks []domain.Task
}

func (s stubFetcher) FetchPage(context.Context, domain.QuerySpec, *domain.Cursor, int) (domain.PageResult, error) {
	return domain.PageResult{Tasks: s.tasks, Mode: domain.ReadNetwork}, nil
}

func TestFeedRegistryScopesFeedsToOwner(t *testing.T) {
	r := NewFeedRegistry(stubFetcher{tasks: []domain.Task{{ID: "a"}}}, nil, 4, time.Minute, nil)

	feed, err := r.Open("u1", domain.QuerySpec{Limit: 10})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := r.Get("u2", feed.ID); !errors.Is(err, domain.ErrFeedNotFound) {
		t.Fatalf("foreign user must not see the feed, got %v", err)
	}

	got, err := r.Get("u1", feed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := got.Session.LoadMore(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Session.Tasks()) != 1 {
		t.Fatalf("expected session state kept between calls")
	}

	if err := r.Close("u1", feed.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected feed removed")
	}
}

func TestFeedRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	r := NewFeedRegistry(stubFetcher{}, nil, 2, time.Minute, nil)

	first, _ := r.Open("u1", domain.QuerySpec{})
	_, _ = r.Open("u1", domain.QuerySpec{})
	_, _ = r.Open("u1", domain.QuerySpec{})

	if r.Len() != 2 {
		t.Fatalf("expected registry bounded to 2, got %d", r.Len())
	}
	if _, err := r.Get("u1", first.ID); err == nil {
		t.Fatalf("oldest feed should have been evicted")
	}
}

func TestFeedRegistryRejectsInvalidQuery(t *testing.T) {
	r := NewFeedRegistry(stubFetcher{}, nil, 2, time.Minute, nil)
	if _, err := r.Open("u1", domain.QuerySpec{SortBy: "title"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected INVALID, got %v", err)
	}
}

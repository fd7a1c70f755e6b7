package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/tasksync/domain"
)

type fakeConn struct {
	mu        sync.Mutex
	connected bool
}

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) set(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}

// memStore evaluates plans in memory and doubles as remote repository and local cache.
type memStore struct {
	mu         sync.Mutex
	tasks      map[string]domain.Task
	categories map[string]domain.Category
	findCalls  int
	err        error
}

func newMemStore(tasks ...domain.Task) *memStore {
	s := &memStore{tasks: map[string]domain.Task{}, categories: map[string]domain.Category{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memStore) Find(_ context.Context, plan domain.Plan, after *domain.Cursor, limit int) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Task
	for _, t := range s.tasks {
		if !plan.Match(t) {
			continue
		}
		if after != nil && !plan.After(t, *after) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return plan.Less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*domain.Task, error) {
	return s.GetTask(id)
}

func (s *memStore) GetTask(id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (s *memStore) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *memStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	existing, ok := s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.CreatedAt = existing.CreatedAt
	s.tasks[task.ID] = *task
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memStore) PutTasks(tasks ...domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

func (s *memStore) ReplaceRange(plan domain.Plan, through *domain.Cursor, tasks ...domain.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := map[string]bool{}
	for _, t := range tasks {
		keep[t.ID] = true
	}
	var removed int
	for id, t := range s.tasks {
		if keep[id] || !plan.Match(t) || (through != nil && plan.After(t, *through)) {
			continue
		}
		delete(s.tasks, id)
		removed++
	}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return removed, nil
}

func (s *memStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

func (s *memStore) PutCategories(categories ...domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return nil
}

func (s *memStore) List(context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) DetachCategory(id string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	var n int
	for k, t := range s.tasks {
		if t.CategoryID == id {
			t.CategoryID = ""
			t.UpdatedAt = now
			s.tasks[k] = t
			n++
		}
	}
	return n, nil
}

func (s *memStore) DeleteCascade(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return 0, s.err
	}
	_, ok := s.categories[id]
	s.mu.Unlock()
	if !ok {
		return 0, domain.ErrCategoryNotFound
	}
	return s.DetachCategory(id, time.Now())
}

func (s *memStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls
}

func (s *memStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

// categoryRepo adapts memStore to repository.CategoryRepository.
type categoryRepo struct{ *memStore }

func (r categoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.PutCategories(*c)
}

type bufferCall struct {
	entity    string
	operation string
	id        string
}

type fakeBuffer struct {
	mu    sync.Mutex
	calls []bufferCall
}

func (b *fakeBuffer) BufferTask(_ context.Context, operation string, task *domain.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, bufferCall{entity: "task", operation: operation, id: task.ID})
	return nil
}

func (b *fakeBuffer) BufferCategory(_ context.Context, operation string, c *domain.Category) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, bufferCall{entity: "category", operation: operation, id: c.ID})
	return nil
}

// fakeResultCache mimics the tag-versioned redis cache.
type fakeResultCache struct {
	mu          sync.Mutex
	versions    map[string]int64
	entries     map[string][]byte
	invalidated [][]string
	failInvalid bool
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{versions: map[string]int64{}, entries: map[string][]byte{}}
}

func (c *fakeResultCache) Version(_ context.Context, tag string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[tag], nil
}

func (c *fakeResultCache) Get(_ context.Context, tag string, version int64, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[fmt.Sprintf("%s:%d:%s", tag, version, key)]
	return v, ok, nil
}

func (c *fakeResultCache) Set(_ context.Context, tag string, version int64, key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[tag] != version {
		return nil
	}
	c.entries[fmt.Sprintf("%s:%d:%s", tag, version, key)] = payload
	return nil
}

func (c *fakeResultCache) Invalidate(_ context.Context, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, tags)
	if c.failInvalid {
		return errors.New("cache down")
	}
	for _, tag := range tags {
		c.versions[tag]++
	}
	return nil
}

func taskIDs(tasks []domain.Task) string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return strings.Join(ids, ",")
}

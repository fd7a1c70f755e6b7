package task

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
)

// PageFetcher loads one page of a listing.
type PageFetcher interface {
	FetchPage(ctx context.Context, spec domain.QuerySpec, cursor *domain.Cursor, pageSize int) (domain.PageResult, error)
}

// TaskUpdater persists a modified task.
type TaskUpdater interface {
	Update(ctx context.Context, task *domain.Task) error
}

// Session owns the accumulated list of an infinite-scroll listing. At most one page fetch runs
// at a time, and a page fetched for a query that has since been replaced is dropped.
type Session struct {
	fetcher PageFetcher
	updater TaskUpdater
	logger  *zap.Logger

	mu         sync.Mutex
	spec       domain.QuerySpec
	generation uint64
	tasks      []domain.Task
	cursor     *domain.Cursor
	hasMore    bool
	loaded     bool
	inFlight   bool
	mode       domain.ReadMode
	lastErr    error
}

func NewSession(fetcher PageFetcher, updater TaskUpdater, spec domain.QuerySpec, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		fetcher: fetcher,
		updater: updater,
		logger:  logger,
		spec:    spec,
		hasMore: true,
	}
}

// Reset discards the accumulated list and starts over with spec.
func (s *Session) Reset(spec domain.QuerySpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.spec = spec
	s.tasks = nil
	s.cursor = nil
	s.hasMore = true
	s.loaded = false
	s.inFlight = false
	s.mode = ""
	s.lastErr = nil
}

// LoadMore fetches the next page and merges it into the list. It reports whether a page was
// applied: false with a nil error means another fetch was in flight, the end was reached, or
// the result belonged to a replaced spec.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.inFlight || (s.loaded && !s.hasMore) {
		s.mu.Unlock()
		return false, nil
	}
	spec, generation, cursor, first := s.spec, s.generation, s.cursor, !s.loaded
	s.inFlight = true
	s.mu.Unlock()

	page, err := s.fetcher.FetchPage(ctx, spec, cursor, spec.Limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || !spec.SameSelection(s.spec) {
		s.logger.Debug("dropping page for replaced listing")
		return false, nil
	}
	s.inFlight = false
	if err != nil {
		s.lastErr = err
		return false, err
	}

	s.tasks = Merge(s.tasks, page.Tasks, first)
	if next := page.NextCursor(); next != nil {
		s.cursor = next
	}
	s.hasMore = page.HasMore
	s.loaded = true
	s.mode = page.Mode
	s.lastErr = nil
	return true, nil
}

// ToggleStatus flips a loaded task's status right away and persists it. The local change is
// reverted if the write fails.
func (s *Session) ToggleStatus(ctx context.Context, id string) (domain.Task, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, domain.ErrTaskNotFound
	}
	before := s.tasks[idx]
	updated := before
	updated.Status = before.Status.Toggle()
	s.tasks[idx] = updated
	generation := s.generation
	s.mu.Unlock()

	err := s.updater.Update(ctx, &updated)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	if generation == s.generation {
		i = s.indexOf(id)
	}
	if err != nil {
		if i >= 0 && s.tasks[i].Status == updated.Status {
			s.tasks[i] = before
		}
		return before, err
	}
	if i >= 0 {
		s.tasks[i] = updated
	}
	return updated, nil
}

// ReplaceLocal swaps in a newer copy of an already loaded task. Unknown ids are ignored.
func (s *Session) ReplaceLocal(task domain.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(task.ID)
	if i < 0 {
		return false
	}
	s.tasks[i] = task
	return true
}

// Tasks returns a copy of the accumulated list.
func (s *Session) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

func (s *Session) Spec() domain.QuerySpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Mode reports where the last applied page came from.
func (s *Session) Mode() domain.ReadMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

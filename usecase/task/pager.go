package task

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
	"github.com/fastygo/tasksync/usecase"
	"github.com/fastygo/tasksync/usecase/query"
)

// LocalReader is the on-device document cache: it serves cache-mode reads and receives
// every page fetched from the network.
type LocalReader interface {
	repository.TaskReader
	PutTasks(tasks ...domain.Task) error
	ReplaceRange(plan domain.Plan, through *domain.Cursor, tasks ...domain.Task) (int, error)
}

var errNoLocalCache = errors.New("local cache not configured")

// Pager executes one page of a listing at a time.
type Pager struct {
	remote  repository.TaskReader
	local   LocalReader
	results repository.ResultCache
	conn    usecase.ConnectionState
	maxSize int
	logger  *zap.Logger
}

func NewPager(
	remote repository.TaskReader,
	local LocalReader,
	results repository.ResultCache,
	conn usecase.ConnectionState,
	maxPageSize int,
	logger *zap.Logger,
) *Pager {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{
		remote:  remote,
		local:   local,
		results: results,
		conn:    conn,
		maxSize: maxPageSize,
		logger:  logger,
	}
}

// ClampPageSize bounds pageSize to [1, max].
func (p *Pager) ClampPageSize(pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	if pageSize > p.maxSize {
		return p.maxSize
	}
	return pageSize
}

// FetchPage returns up to pageSize tasks positioned strictly after cursor (nil = from the start).
// The read mode is picked from the current connectivity on every call. Store failures surface as
// QUERY_FAILED and are not retried.
func (p *Pager) FetchPage(ctx context.Context, spec domain.QuerySpec, cursor *domain.Cursor, pageSize int) (domain.PageResult, error) {
	if err := spec.Validate(); err != nil {
		return domain.PageResult{}, err
	}
	pageSize = p.ClampPageSize(pageSize)
	plan := query.Build(spec)
	if cursor != nil && !plan.Accepts(*cursor) {
		return domain.PageResult{}, domain.ErrInvalidCursor
	}

	mode := domain.ReadCache
	if p.conn == nil || p.conn.IsConnected() {
		mode = domain.ReadNetwork
	}

	var (
		rows []domain.Task
		err  error
	)
	if mode == domain.ReadNetwork {
		rows, err = p.fetchNetwork(ctx, plan, cursor, pageSize+1)
	} else {
		rows, err = p.fetchCache(ctx, plan, cursor, pageSize+1)
	}
	if err != nil {
		p.logger.Warn("page fetch failed", zap.String("mode", string(mode)), zap.Error(err))
		return domain.PageResult{}, domain.QueryFailed(err)
	}

	return buildPage(plan, rows, pageSize, mode), nil
}

func (p *Pager) fetchNetwork(ctx context.Context, plan domain.Plan, cursor *domain.Cursor, limit int) ([]domain.Task, error) {
	key := pageKey(plan, cursor, limit)
	memoise := p.results != nil && key != ""

	// The version is taken before the store read. A write that lands during the read bumps it,
	// and the rows below are then never served.
	var version int64
	if memoise {
		v, err := p.results.Version(ctx, repository.TagTask)
		if err != nil {
			p.logger.Warn("result cache read failed", zap.Error(err))
			memoise = false
		}
		version = v
	}
	if memoise {
		payload, ok, err := p.results.Get(ctx, repository.TagTask, version, key)
		if err != nil {
			p.logger.Warn("result cache read failed", zap.Error(err))
		} else if ok {
			var rows []domain.Task
			if err := json.Unmarshal(payload, &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := p.remote.Find(ctx, plan, cursor, limit)
	if err != nil {
		return nil, err
	}

	p.copyToLocal(plan, cursor, rows, limit)
	if memoise {
		if payload, err := json.Marshal(rows); err == nil {
			if err := p.results.Set(ctx, repository.TagTask, version, key, payload); err != nil {
				p.logger.Warn("result cache write failed", zap.Error(err))
			}
		}
	}
	return rows, nil
}

// copyToLocal stores fetched rows in the local cache. A first page is authoritative for the range
// it covers, so cached matches inside that range that the store no longer returns are dropped.
func (p *Pager) copyToLocal(plan domain.Plan, cursor *domain.Cursor, rows []domain.Task, limit int) {
	if p.local == nil {
		return
	}
	if cursor != nil {
		if len(rows) == 0 {
			return
		}
		if err := p.local.PutTasks(rows...); err != nil {
			p.logger.Warn("failed to copy page into local cache", zap.Error(err))
		}
		return
	}

	var through *domain.Cursor
	if len(rows) >= limit && len(rows) > 0 {
		c := plan.CursorFor(rows[len(rows)-1])
		through = &c
	}
	removed, err := p.local.ReplaceRange(plan, through, rows...)
	if err != nil {
		p.logger.Warn("failed to copy page into local cache", zap.Error(err))
		return
	}
	if removed > 0 {
		p.logger.Debug("dropped tasks deleted remotely from local cache", zap.Int("tasks", removed))
	}
}

func (p *Pager) fetchCache(ctx context.Context, plan domain.Plan, cursor *domain.Cursor, limit int) ([]domain.Task, error) {
	if p.local == nil {
		return nil, errNoLocalCache
	}
	return p.local.Find(ctx, plan, cursor, limit)
}

// buildPage trims the over-fetched row and positions the cursor on the last returned task.
func buildPage(plan domain.Plan, rows []domain.Task, pageSize int, mode domain.ReadMode) domain.PageResult {
	page := domain.PageResult{
		HasMore:      len(rows) > pageSize,
		LastDocValue: domain.NoValue(),
		Mode:         mode,
	}
	if page.HasMore {
		rows = rows[:pageSize]
	}
	page.Tasks = rows
	if page.Tasks == nil {
		page.Tasks = []domain.Task{}
	}
	if n := len(rows); n > 0 {
		c := plan.CursorFor(rows[n-1])
		page.LastDocID = c.LastID
		page.LastDocValue = c.LastValue
	}
	return page
}

func pageKey(plan domain.Plan, cursor *domain.Cursor, limit int) string {
	payload, err := json.Marshal(struct {
		Plan   domain.Plan    `json:"plan"`
		Cursor *domain.Cursor `json:"cursor"`
		Limit  int            `json:"limit"`
	}{plan, cursor, limit})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

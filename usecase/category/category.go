package category

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/repository"
	"github.com/fastygo/tasksync/usecase"
)

const listKey = "all"

// LocalCategories is the cached category list used while offline.
type LocalCategories interface {
	ListCategories() ([]domain.Category, error)
	PutCategories(categories ...domain.Category) error
}

// Writer is the subset of the task gateway that mutates categories.
type Writer interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type UseCase struct {
	repo    repository.CategoryRepository
	local   LocalCategories
	results repository.ResultCache
	writer  Writer
	conn    usecase.ConnectionState
	logger  *zap.Logger
}

func New(
	repo repository.CategoryRepository,
	local LocalCategories,
	results repository.ResultCache,
	writer Writer,
	conn usecase.ConnectionState,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:    repo,
		local:   local,
		results: results,
		writer:  writer,
		conn:    conn,
		logger:  logger,
	}
}

// List returns every category sorted by name. Online reads are memoised under the Category tag.
func (uc *UseCase) List(ctx context.Context) ([]domain.Category, error) {
	if uc.conn != nil && !uc.conn.IsConnected() {
		if uc.local == nil {
			return []domain.Category{}, nil
		}
		categories, err := uc.local.ListCategories()
		if err != nil {
			return nil, domain.QueryFailed(err)
		}
		return sortByName(categories), nil
	}

	memoise := uc.results != nil
	var version int64
	if memoise {
		v, err := uc.results.Version(ctx, repository.TagCategory)
		if err != nil {
			uc.logger.Warn("category cache read failed", zap.Error(err))
			memoise = false
		}
		version = v
	}
	if memoise {
		payload, ok, err := uc.results.Get(ctx, repository.TagCategory, version, listKey)
		if err != nil {
			uc.logger.Warn("category cache read failed", zap.Error(err))
		} else if ok {
			var categories []domain.Category
			if err := json.Unmarshal(payload, &categories); err == nil {
				return categories, nil
			}
		}
	}

	categories, err := uc.repo.List(ctx)
	if err != nil {
		return nil, domain.QueryFailed(err)
	}
	categories = sortByName(categories)

	if uc.local != nil && len(categories) > 0 {
		if err := uc.local.PutCategories(categories...); err != nil {
			uc.logger.Warn("failed to copy categories into local cache", zap.Error(err))
		}
	}
	if memoise {
		if payload, err := json.Marshal(categories); err == nil {
			if err := uc.results.Set(ctx, repository.TagCategory, version, listKey, payload); err != nil {
				uc.logger.Warn("category cache write failed", zap.Error(err))
			}
		}
	}
	return categories, nil
}

func (uc *UseCase) Create(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: name}
	if err := uc.writer.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes the category and detaches its tasks.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.writer.DeleteCategory(ctx, id)
}

func sortByName(categories []domain.Category) []domain.Category {
	if categories == nil {
		return []domain.Category{}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories
}

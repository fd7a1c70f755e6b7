package transport

import (
	"strings"
	"time"

	"github.com/fastygo/tasksync/domain"
)

// TaskRequest is the create/update body. Deadline is RFC 3339.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CategoryID  string `json:"categoryId"`
	Deadline    string `json:"deadline"`
	ImageURL    string `json:"imageUrl"`
}

// ToTask converts the request into a domain task.
func (r TaskRequest) ToTask(id string) (*domain.Task, error) {
	deadline, err := time.Parse(time.RFC3339, strings.TrimSpace(r.Deadline))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "deadline must be RFC 3339", err)
	}
	return &domain.Task{
		ID:          id,
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		CategoryID:  r.CategoryID,
		Deadline:    deadline.UTC(),
		ImageURL:    r.ImageURL,
	}, nil
}

type CategoryRequest struct {
	Name string `json:"name"`
}

// FeedRequest opens a server-held listing.
type FeedRequest struct {
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CategoryID  string `json:"categoryId"`
	SortBy      string `json:"sortBy"`
	SearchTitle string `json:"search"`
	Limit       int    `json:"limit"`
}

func (r FeedRequest) Spec() domain.QuerySpec {
	return domain.QuerySpec{
		Priority:    domain.TaskPriority(r.Priority),
		Status:      domain.TaskStatus(r.Status),
		CategoryID:  r.CategoryID,
		SortBy:      domain.SortOrder(r.SortBy),
		SearchTitle: r.SearchTitle,
		Limit:       r.Limit,
	}
}

type DraftRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Deadline    string `json:"deadline"`
	ImageURI    string `json:"imageUri"`
}

func (r DraftRequest) Draft() domain.TaskDraft {
	return domain.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Deadline:    r.Deadline,
		ImageURI:    r.ImageURI,
	}
}

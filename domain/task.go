package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type TaskStatus string

const (
	StatusCompleted   TaskStatus = "completed"
	StatusUncompleted TaskStatus = "uncompleted"
)

func (s TaskStatus) IsValid() bool {
	return s == StatusCompleted || s == StatusUncompleted
}

// Toggle returns the opposite status.
func (s TaskStatus) Toggle() TaskStatus {
	if s == StatusCompleted {
		return StatusUncompleted
	}
	return StatusCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a user task document.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	TitleLowercase string       `json:"titleLowercase"`
	Description    string       `json:"description,omitempty"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	CategoryID     string       `json:"categoryId,omitempty"`
	Deadline       time.Time    `json:"deadline"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Touch stamps UpdatedAt (and CreatedAt on first write) and keeps TitleLowercase in sync with Title.
func (t *Task) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = now
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.TitleLowercase = NormalizeTitle(t.Title)
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// Validate checks the fields every stored task must carry.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if !t.Status.IsValid() {
		return NewError(ErrCodeInvalid, "invalid status")
	}
	if !t.Priority.IsValid() {
		return NewError(ErrCodeInvalid, "invalid priority")
	}
	if t.Deadline.IsZero() {
		return NewError(ErrCodeInvalid, "deadline is required")
	}
	return nil
}

// NormalizeTitle folds a title (or a search term) into the form stored in TitleLowercase.
func NormalizeTitle(title string) string {
	return cases.Lower(language.Und).String(title)
}

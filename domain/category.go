package domain

import (
	"strings"
	"time"
)

// Category groups tasks. Deleting one detaches its tasks instead of removing them.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Category) Touch(now time.Time) {
	if c == nil {
		return
	}
	c.UpdatedAt = now
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

func (c *Category) Validate() error {
	if c == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(c.Name) == "" {
		return NewError(ErrCodeInvalid, "category name is required")
	}
	return nil
}

package domain

import "time"

// TaskDraft is an unsaved task form kept on the device between sessions.
type TaskDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	Deadline    string    `json:"deadline"`
	ImageURI    string    `json:"imageUri,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

package transport

import (
	"encoding/json"

	"github.com/fastygo/tasksync/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// PageMeta describes where a page came from and how to continue it.
type PageMeta struct {
	HasMore    bool            `json:"hasMore"`
	NextCursor string          `json:"nextCursor,omitempty"`
	Mode       domain.ReadMode `json:"mode"`
	Count      int             `json:"count"`
}

// FeedView is the state of a server-held listing.
type FeedView struct {
	ID      string           `json:"id"`
	Spec    domain.QuerySpec `json:"spec"`
	Tasks   []domain.Task    `json:"tasks"`
	HasMore bool             `json:"hasMore"`
	Mode    domain.ReadMode  `json:"mode,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

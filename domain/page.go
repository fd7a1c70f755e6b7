package domain

// ReadMode selects where a page is read from.
type ReadMode string

const (
	ReadNetwork ReadMode = "network"
	ReadCache   ReadMode = "cache"
)

// PageResult is one page of a listing plus the cursor of its last task.
type PageResult struct {
	Tasks        []Task      `json:"tasks"`
	LastDocID    string      `json:"lastDocId,omitempty"`
	LastDocValue CursorValue `json:"lastDocValue"`
	HasMore      bool        `json:"hasMore"`
	Mode         ReadMode    `json:"mode"`
}

// NextCursor returns the resume cursor, or nil when the page was empty.
func (p PageResult) NextCursor() *Cursor {
	if p.LastDocID == "" {
		return nil
	}
	return &Cursor{LastID: p.LastDocID, LastValue: p.LastDocValue}
}

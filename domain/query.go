package domain

import "strings"

type SortOrder string

const (
	SortDeadlineAsc  SortOrder = "deadline_asc"
	SortDeadlineDesc SortOrder = "deadline_desc"
)

func (s SortOrder) IsValid() bool {
	return s == "" || s == SortDeadlineAsc || s == SortDeadlineDesc
}

// QuerySpec describes a filtered, sorted or searched task listing.
// Zero values mean "not applied", which keeps the struct comparable with ==.
type QuerySpec struct {
	Priority    TaskPriority `json:"priority,omitempty"`
	Status      TaskStatus   `json:"status,omitempty"`
	CategoryID  string       `json:"categoryId,omitempty"`
	SortBy      SortOrder    `json:"sortBy,omitempty"`
	SearchTitle string       `json:"searchTitle,omitempty"`
	Limit       int          `json:"limit"`
}

// HasFilters reports whether any equality filter is set.
func (q QuerySpec) HasFilters() bool {
	return q.Priority != "" || q.Status != "" || q.CategoryID != ""
}

// SameSelection reports whether two specs select and order the same documents.
// Limit is ignored: changing the page size does not start a new listing.
func (q QuerySpec) SameSelection(other QuerySpec) bool {
	q.Limit, other.Limit = 0, 0
	return q == other
}

func (q QuerySpec) Validate() error {
	if q.Priority != "" && !q.Priority.IsValid() {
		return NewError(ErrCodeInvalid, "invalid priority filter")
	}
	if q.Status != "" && !q.Status.IsValid() {
		return NewError(ErrCodeInvalid, "invalid status filter")
	}
	if !q.SortBy.IsValid() {
		return NewError(ErrCodeInvalid, "invalid sort order")
	}
	return nil
}

// Field names a task document field that queries can filter or order on.
type Field string

const (
	FieldID             Field = "id"
	FieldPriority       Field = "priority"
	FieldStatus         Field = "status"
	FieldCategoryID     Field = "categoryId"
	FieldTitleLowercase Field = "titleLowercase"
	FieldDeadline       Field = "deadline"
	FieldCreatedAt      Field = "createdAt"
)

type Operator string

const (
	OpEqual        Operator = "=="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// Predicate is one collection filter. All filterable fields are string valued.
type Predicate struct {
	Field Field    `json:"field"`
	Op    Operator `json:"op"`
	Value string   `json:"value"`
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Ordering is the single sort directive of a plan. Ties are always broken by document id
// in the same direction.
type Ordering struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// Plan is a store-agnostic query: conjunctive predicates plus exactly one ordering.
type Plan struct {
	Predicates []Predicate `json:"predicates"`
	Order      Ordering    `json:"order"`
}

// Match evaluates the predicates against a task.
func (p Plan) Match(t Task) bool {
	for _, pred := range p.Predicates {
		v := t.stringField(pred.Field)
		switch pred.Op {
		case OpEqual:
			if v != pred.Value {
				return false
			}
		case OpGreaterEqual:
			if v < pred.Value {
				return false
			}
		case OpLessEqual:
			if v > pred.Value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Less reports whether a sorts before b under the plan ordering.
func (p Plan) Less(a, b Task) bool {
	return p.compare(a, p.CursorValue(b), b.ID) < 0
}

// After reports whether t sorts strictly after the cursor position.
func (p Plan) After(t Task, c Cursor) bool {
	return p.compare(t, c.LastValue, c.LastID) > 0
}

// CursorValue extracts the ordering field of t as a resume value.
func (p Plan) CursorValue(t Task) CursorValue {
	switch p.Order.Field {
	case FieldTitleLowercase:
		return StringValue(t.TitleLowercase)
	case FieldDeadline:
		return TimestampValue(t.Deadline)
	case FieldCreatedAt:
		return TimestampValue(t.CreatedAt)
	default:
		return NoValue()
	}
}

// CursorFor builds the resume cursor positioned on t.
func (p Plan) CursorFor(t Task) Cursor {
	return Cursor{LastID: t.ID, LastValue: p.CursorValue(t)}
}

func (p Plan) compare(t Task, value CursorValue, id string) int {
	var c int
	switch p.Order.Field {
	case FieldTitleLowercase:
		c = strings.Compare(t.TitleLowercase, value.Str)
	case FieldDeadline:
		c = t.Deadline.Compare(value.Time)
	case FieldCreatedAt:
		c = t.CreatedAt.Compare(value.Time)
	}
	if c == 0 {
		c = strings.Compare(t.ID, id)
	}
	if p.Order.Direction == Desc {
		c = -c
	}
	return c
}

func (t Task) stringField(f Field) string {
	switch f {
	case FieldID:
		return t.ID
	case FieldPriority:
		return string(t.Priority)
	case FieldStatus:
		return string(t.Status)
	case FieldCategoryID:
		return t.CategoryID
	case FieldTitleLowercase:
		return t.TitleLowercase
	}
	return ""
}

// Accepts reports whether c carries the value kind this plan's ordering resumes from.
func (p Plan) Accepts(c Cursor) bool {
	if c.LastID == "" {
		return false
	}
	switch p.Order.Field {
	case FieldTitleLowercase:
		return c.LastValue.Kind == ValueString
	case FieldDeadline, FieldCreatedAt:
		return c.LastValue.Kind == ValueTimestamp
	default:
		return c.LastValue.Kind == ValueNone
	}
}

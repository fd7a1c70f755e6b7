package domain

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

type ValueKind string

const (
	ValueNone      ValueKind = "none"
	ValueString    ValueKind = "string"
	ValueTimestamp ValueKind = "timestamp"
)

// CursorValue is the ordering-field value of the last returned document.
// Its kind depends on which ordering the query used.
type CursorValue struct {
	Kind ValueKind `json:"kind"`
	Str  string    `json:"str,omitempty"`
	Time time.Time `json:"time,omitempty"`
}

func NoValue() CursorValue { return CursorValue{Kind: ValueNone} }

func StringValue(s string) CursorValue { return CursorValue{Kind: ValueString, Str: s} }

func TimestampValue(t time.Time) CursorValue { return CursorValue{Kind: ValueTimestamp, Time: t} }

// Any returns the raw value, or nil for ValueNone.
func (v CursorValue) Any() interface{} {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueTimestamp:
		return v.Time
	default:
		return nil
	}
}

// Cursor is the resume position of a listing: the (value, id) pair of the last returned task.
type Cursor struct {
	LastID    string      `json:"id"`
	LastValue CursorValue `json:"value"`
}

// ErrInvalidCursor is returned when a cursor token cannot be decoded.
var ErrInvalidCursor = NewError(ErrCodeInvalid, "invalid cursor")

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	payload, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeCursor parses a token produced by Cursor.Encode. An empty token yields nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, WrapError(ErrCodeInvalid, "invalid cursor", err)
	}
	var c Cursor
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, WrapError(ErrCodeInvalid, "invalid cursor", err)
	}
	if c.LastID == "" {
		return nil, ErrInvalidCursor
	}
	switch c.LastValue.Kind {
	case ValueNone, ValueString, ValueTimestamp:
	case "":
		c.LastValue.Kind = ValueNone
	default:
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

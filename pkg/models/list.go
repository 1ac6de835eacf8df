package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// List is an ordered sequence of URIs or inline data blobs (attachments,
// comment images, completion images, meeting attendees).
//
// Storage and the wire keep it as JSON text. Every endpoint goes through
// ParseList and Encode so the defensive rules live in one place:
//   - absent, null or empty text decodes to an empty list, never nil
//   - a JSON array decodes element by element
//   - a bare non-JSON string decodes to a single-element list
type List []string

// ParseList decodes any representation a list column or request field may
// arrive in.
func ParseList(raw any) List {
	switch v := raw.(type) {
	case nil:
		return List{}
	case List:
		return v.Clone()
	case []string:
		return List(v).Clone()
	case []any:
		out := make(List, 0, len(v))
		for _, el := range v {
			if el == nil {
				continue
			}
			if s, ok := el.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(el))
		}
		return out
	case []byte:
		return parseListText(string(v))
	case string:
		return parseListText(v)
	default:
		return List{fmt.Sprint(v)}
	}
}

func parseListText(s string) List {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "null" {
		return List{}
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return List{s}
	}
	switch v := decoded.(type) {
	case []any:
		return ParseList(v)
	case string:
		if v == "" {
			return List{}
		}
		return List{v}
	case nil:
		return List{}
	default:
		// a bare number or object is still one opaque element
		return List{s}
	}
}

// Encode renders the list as JSON text. An empty or nil list encodes to "[]".
func (l List) Encode() string {
	if len(l) == 0 {
		return "[]"
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Clone returns a non-nil copy.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// OrEmpty returns l, or an empty list when l is nil.
func (l List) OrEmpty() List {
	if l == nil {
		return List{}
	}
	return l
}

// Contains reports whether s is an element of the list.
func (l List) Contains(s string) bool {
	for _, el := range l {
		if el == s {
			return true
		}
	}
	return false
}

// Scan implements sql.Scanner.
func (l *List) Scan(src any) error {
	*l = ParseList(src)
	return nil
}

// Value implements driver.Valuer.
func (l List) Value() (driver.Value, error) {
	return l.Encode(), nil
}

// MarshalJSON never emits null.
func (l List) MarshalJSON() ([]byte, error) {
	return []byte(l.Encode()), nil
}

// UnmarshalJSON accepts an array, null, or a string holding JSON text or a
// single bare value.
func (l *List) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = List{}
		return nil
	}
	switch b[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = ParseList(items)
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = parseListText(s)
	default:
		*l = List{string(b)}
	}
	return nil
}

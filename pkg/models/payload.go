package models

import (
	"database/sql/driver"
	"encoding/json"
	"maps"
	"strings"
)

// Payload is the opaque data attached to a notification, for example
// {taskId, note, image}. It is stored as JSON text.
type Payload map[string]any

// Scan implements sql.Scanner. Unparseable text yields a nil payload rather
// than failing the whole row.
func (p *Payload) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		text = string(v)
	case string:
		text = v
	default:
		*p = nil
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		*p = nil
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		*p = nil
		return nil
	}
	*p = out
	return nil
}

// Clone copies the top-level map. A nil payload stays nil.
func (p Payload) Clone() Payload {
	return maps.Clone(p)
}

// Value implements driver.Valuer.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

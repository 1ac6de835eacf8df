package models

import "time"

// Timestamp renders t the way every createdAt/completedAt field is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// StrPtr returns nil for an empty string.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

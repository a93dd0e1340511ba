package database

import "time"

// FormatTimestamp renders a database timestamp as an ISO-8601 (RFC 3339) string in UTC
// for embedding in JSON. A nil timestamp stays nil so it serialises as null.
func FormatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

package db

import "time"

// nilIfEmpty maps an empty string to NULL for nullable text columns.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nilIfZeroTime maps a zero time to NULL so the database default applies.
func nilIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

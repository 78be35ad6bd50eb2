// Package sqldb implements the repository interfaces on top of the database
// gateway. No code here touches a backend driver directly.
package sqldb

import (
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
)

// The two backends disagree on scalar representations: SQLite hands back
// int64 for booleans and sometimes strings for timestamps (raw shapes),
// Postgres hands back native bool and time.Time. These helpers absorb the
// difference so the model builders stay flat.

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339Nano,
	time.RFC3339,
}

func fieldString(row db.Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func fieldBool(row db.Row, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	}
	return false
}

func fieldTime(row db.Row, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

func fieldTimePtr(row db.Row, key string) *time.Time {
	if row[key] == nil {
		return nil
	}
	t := fieldTime(row, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

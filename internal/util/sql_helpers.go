package util

import (
	"database/sql"
	"time"
)

// StringToNullString converts a string to sql.NullString.
// An empty string is treated as NULL.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// TimeToNullTime converts a time.Time to sql.NullTime.
// A zero time is treated as NULL.
func TimeToNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// NullStringToString unwraps a sql.NullString, NULL becoming "".
func NullStringToString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// NullTimeToTime unwraps a sql.NullTime, NULL becoming the zero time.
func NullTimeToTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}

// BoolToNumber maps a bool onto the NUMBER(1) convention used by the schema.
func BoolToNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NumberToBool is the inverse of BoolToNumber.
func NumberToBool(n int) bool {
	return n != 0
}

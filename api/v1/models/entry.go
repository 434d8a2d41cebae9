package models

import "time"

// Entry is a single logged occurrence. The log time is supplied by the
// client at creation and may be any instant, past or future.
type Entry struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	LogTime time.Time `json:"log_time"`
}

// UserTimeLayout is the wire format clients use for log times. It matches
// the value produced by an HTML datetime-local input.
const UserTimeLayout = "2006-01-02T15:04"

// LogTimeLayout is the format entries are rendered with in responses.
const LogTimeLayout = "2006-01-02T15:04:05"

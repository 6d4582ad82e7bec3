package utils

import "time"

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Clock lets services take the current time from somewhere tests control.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

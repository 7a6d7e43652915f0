package core

import "time"

// Timestamp is a UTC instant at SQL TIMESTAMP precision
type Timestamp time.Time

// Now returns the current UTC time truncated to microseconds, so a value
// read back from the database equals the one written
func Now() Timestamp {
	return Timestamp(time.Now().UTC().Truncate(time.Microsecond))
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339Nano) }

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// isoMillis is the serialized form written into cached payloads. The trailing
// Z is a literal: values are always converted to UTC first.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Timestamp carries a point in time that may arrive in either of two shapes:
// a native document-store value ({seconds, nanoseconds}) or its serialized
// ISO-8601 string form as written by the content cache. All display code goes
// through the Time accessor, so neither shape leaks past this type.
type Timestamp struct {
	t     time.Time
	valid bool
}

// NewTimestamp wraps a concrete time value.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{t: t, valid: true}
}

// Time returns the underlying time in UTC. Zero when the timestamp is unset.
func (ts Timestamp) Time() time.Time {
	if !ts.valid {
		return time.Time{}
	}
	return ts.t.UTC()
}

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool {
	return !ts.valid
}

// FormatDate renders the calendar date the way the site displays it,
// independent of which shape the value arrived in.
func (ts Timestamp) FormatDate() string {
	if !ts.valid {
		return ""
	}
	return ts.Time().Format("Monday, January 2, 2006")
}

// MarshalJSON always emits the serialized ISO form. Normalization is
// idempotent: re-marshalling a restored value produces the same string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time().Format(isoMillis))
}

// nativeTimestamp mirrors the wire shape of a document-store timestamp.
type nativeTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// UnmarshalJSON accepts null, an ISO-8601 string, or the native object shape.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ts = Timestamp{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("timestamp: parse %q: %w", raw, err)
		}
		*ts = NewTimestamp(parsed)
		return nil
	}

	var native nativeTimestamp
	if err := json.Unmarshal(data, &native); err != nil {
		return fmt.Errorf("timestamp: unsupported shape: %w", err)
	}
	*ts = NewTimestamp(time.Unix(native.Seconds, native.Nanoseconds).UTC())
	return nil
}

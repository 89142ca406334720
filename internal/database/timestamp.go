package database

import (
	"database/sql/driver"
	"strings"
	"time"
)

// timestampLayouts are the textual forms drivers return for DATETIME / TIMESTAMP columns
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp scans a nullable timestamp from any supported driver.
// Values that cannot be parsed leave Valid false and Malformed true instead of failing the scan,
// so one corrupt row never aborts a listing.
type Timestamp struct {
	Time      time.Time
	Valid     bool
	Malformed bool
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src interface{}) error {
	*t = Timestamp{}

	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), !v.IsZero()
		t.Malformed = v.IsZero()
	case string:
		t.parse(v)
	case []byte:
		t.parse(string(v))
	case int64:
		// unix seconds
		t.Time, t.Valid = time.Unix(v, 0).UTC(), true
	default:
		t.Malformed = true
	}
	return nil
}

func (t *Timestamp) parse(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Malformed = true
		return
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return
		}
	}
	t.Malformed = true
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time.UTC(), nil
}

// OrZero returns the parsed time, or the zero time when absent or malformed
func (t Timestamp) OrZero() time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// Ptr returns the parsed time, or nil when absent or malformed
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// NewTimestamp wraps a time for writing
func NewTimestamp(tm time.Time) Timestamp {
	return Timestamp{Time: tm.UTC(), Valid: !tm.IsZero()}
}

// NullableTime wraps an optional time for writing
func NullableTime(tm *time.Time) Timestamp {
	if tm == nil {
		return Timestamp{}
	}
	return NewTimestamp(*tm)
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Base contains common fields for all models
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SkipLimit is the offset pagination used by most list endpoints
type SkipLimit struct {
	Skip  int `json:"skip" form:"skip"`
	Limit int `json:"limit" form:"limit"`
}

// PageSize is the page based pagination used by patient and visit listings
type PageSize struct {
	Page int `json:"page" form:"page"`
	Size int `json:"size" form:"size"`
}

func (p PageSize) Offset() int {
	return (p.Page - 1) * p.Size
}

// Pages returns the number of pages needed for total rows.
func Pages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	// accept full timestamps from clients that send them
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		d.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// IntList is a JSONB array of integers
type IntList []int

func (l *IntList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func (l IntList) Value() (driver.Value, error) {
	return jsonValue([]int(l), "[]")
}

// Int64List is a JSONB array of ids
type Int64List []int64

func (l *Int64List) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func (l Int64List) Value() (driver.Value, error) {
	return jsonValue([]int64(l), "[]")
}

// StatusMap is a JSONB object of string statuses keyed by id
type StatusMap map[string]string

func (m *StatusMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

func (m StatusMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return jsonValue(map[string]string(m), "{}")
}

// jsonValue encodes v as a JSON string. lib/pq sends []byte as bytea,
// so JSONB parameters must be strings.
func jsonValue(v interface{}, empty string) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("cannot scan %T into %T", src, dst)
}

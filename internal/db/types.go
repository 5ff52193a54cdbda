package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/jonathan/talent-pool/internal/types"
)

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = []string{}
		return nil
	}
	source, ok := src.([]byte)
	if !ok {
		if s, isString := src.(string); isString {
			source = []byte(s)
		} else {
			return errors.New("type assertion .([]byte) failed")
		}
	}
	return json.Unmarshal(source, a)
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// ProjectList handles the JSONB projects column
type ProjectList []types.Project

// Scan implements the Scanner interface for ProjectList
func (p *ProjectList) Scan(src interface{}) error {
	if src == nil {
		*p = []types.Project{}
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return errors.New("unsupported projects column type")
	}
	return json.Unmarshal(source, p)
}

// Value implements the Valuer interface for ProjectList
func (p ProjectList) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Breakdown handles the nullable JSONB scores column
type Breakdown struct {
	types.ScoreBreakdown
	Valid bool
}

// Scan implements the Scanner interface for Breakdown
func (b *Breakdown) Scan(src interface{}) error {
	if src == nil {
		b.ScoreBreakdown, b.Valid = types.ScoreBreakdown{}, false
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return errors.New("unsupported scores column type")
	}
	if err := json.Unmarshal(source, &b.ScoreBreakdown); err != nil {
		return err
	}
	b.Valid = true
	return nil
}

// Value implements the Valuer interface for Breakdown
func (b Breakdown) Value() (driver.Value, error) {
	if !b.Valid {
		return nil, nil
	}
	return json.Marshal(b.ScoreBreakdown)
}

// Ptr returns the breakdown or nil when the column was NULL.
func (b Breakdown) Ptr() *types.ScoreBreakdown {
	if !b.Valid {
		return nil
	}
	out := b.ScoreBreakdown
	return &out
}

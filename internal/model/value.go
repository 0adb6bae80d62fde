package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is an optional float64. A computed zero is a valid value and is
// distinct from "not enough history", so indicator outputs never use 0
// (or NaN) as a missing-data sentinel.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some wraps a computed float64.
func Some(f float64) Value { return Value{Float64: f, Valid: true} }

// None is the missing value.
var None = Value{}

// MarshalJSON encodes a missing value as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Float64, 'f', -1, 64)), nil
}

// UnmarshalJSON decodes JSON null as a missing value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

package lifecycle

import (
	"encoding/json"
	"math"
)

// Snapshot is the caller-supplied view of a project's data. The engine reads
// named fields but owns none of them and never writes to the map.
type Snapshot map[string]any

// Has reports whether the field is present with a non-nil value.
func (s Snapshot) Has(field string) bool {
	v, ok := s[field]
	return ok && v != nil
}

// Truthy reports whether the field holds a truthy value. nil, false, zero,
// NaN and the empty string are falsy; everything else is truthy.
func (s Snapshot) Truthy(field string) bool {
	return truthy(s[field])
}

// Number returns the field as a float64 if it holds a numeric value.
func (s Snapshot) Number(field string) (float64, bool) {
	return number(s[field])
}

// Clone returns a shallow copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := number(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

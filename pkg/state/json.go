package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MarshalJSON encodes the snapshot as a plain JSON object.
// Dates are written as RFC 3339 strings.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, s.Len())
	for k, v := range s.All() {
		out[k] = Native(v)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a plain JSON object, inferring each value's shape:
// booleans become Bool, integral numbers Int, RFC 3339 strings Date, arrays of
// RFC 3339 strings Dates and any other string String. Nulls are skipped.
// Fractional numbers, objects and mixed arrays are rejected.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	values := make(map[string]Value, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		val, err := FromAny(v)
		if err != nil {
			return fmt.Errorf("decode snapshot: key %q: %w", k, err)
		}
		values[k] = val
	}
	s.values = values
	return nil
}

// FromAny converts a decoded JSON value (or a plain Go value) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number %s is not an integer", val)
		}
		return Int(n), nil
	case float64:
		if val != math.Trunc(val) {
			return nil, fmt.Errorf("number %v is not an integer", val)
		}
		return Int(int64(val)), nil
	case time.Time:
		return Date(val), nil
	case []time.Time:
		return Dates(val), nil
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return Date(t), nil
		}
		return String(val), nil
	case []any:
		dates := make(Dates, 0, len(val))
		for i, item := range val {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: only date lists are supported", i)
			}
			t, err := time.Parse(time.RFC3339, str)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			dates = append(dates, t)
		}
		return dates, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

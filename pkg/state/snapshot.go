package state

import (
	"slices"
	"time"
)

// Snapshot is a typed key-value store scoped to one scenario run.
type Snapshot struct {
	values map[string]Value
}

// New creates an empty snapshot.
func New() *Snapshot {
	return &Snapshot{values: make(map[string]Value)}
}

// Set stores value under key, overwriting any previous value.
// Setting a nil value removes the key.
func (s *Snapshot) Set(key string, value Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if value == nil {
		delete(s.values, key)
		return
	}
	if dates, ok := value.(Dates); ok {
		value = slices.Clone(dates)
	}
	s.values[key] = value
}

// Get returns the raw value stored under key.
func (s *Snapshot) Get(key string) (Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// String returns the value under key if it is a String.
func (s *Snapshot) String(key string) (string, bool) {
	v, _ := s.Get(key)
	if str, ok := v.(String); ok {
		return string(str), true
	}
	return "", false
}

// Bool returns the value under key if it is a Bool.
func (s *Snapshot) Bool(key string) (bool, bool) {
	v, _ := s.Get(key)
	if b, ok := v.(Bool); ok {
		return bool(b), true
	}
	return false, false
}

// Int returns the value under key if it is an Int.
func (s *Snapshot) Int(key string) (int64, bool) {
	v, _ := s.Get(key)
	if n, ok := v.(Int); ok {
		return int64(n), true
	}
	return 0, false
}

// Date returns the value under key if it is a Date.
func (s *Snapshot) Date(key string) (time.Time, bool) {
	v, _ := s.Get(key)
	if d, ok := v.(Date); ok {
		return d.Time(), true
	}
	return time.Time{}, false
}

// Dates returns a copy of the value under key if it is a Dates sequence.
func (s *Snapshot) Dates(key string) ([]time.Time, bool) {
	v, _ := s.Get(key)
	if d, ok := v.(Dates); ok {
		return slices.Clone([]time.Time(d)), true
	}
	return nil, false
}

// Len returns the number of stored keys.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Keys returns the stored keys in sorted order.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// All returns a copy of the full contents, for summary renderers.
func (s *Snapshot) All() map[string]Value {
	out := make(map[string]Value, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.values {
		if dates, ok := v.(Dates); ok {
			v = slices.Clone(dates)
		}
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{values: s.All()}
}

package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a sealed interface over the value shapes a snapshot can hold.
// Only String, Bool, Int, Date and Dates implement it.
type Value interface {
	stateValue()
	// Kind names the shape ("string", "bool", "int", "date", "dates").
	Kind() string
}

// String is a text answer.
type String string

func (String) stateValue() {}

// Kind implements Value.
func (String) Kind() string { return "string" }

// Bool is a yes/no answer.
type Bool bool

func (Bool) stateValue() {}

// Kind implements Value.
func (Bool) Kind() string { return "bool" }

// Int is an integer answer. Floats are not representable.
type Int int64

func (Int) stateValue() {}

// Kind implements Value.
func (Int) Kind() string { return "int" }

// Date is a point in time.
type Date time.Time

func (Date) stateValue() {}

// Kind implements Value.
func (Date) Kind() string { return "date" }

// Time returns the underlying time.
func (d Date) Time() time.Time { return time.Time(d) }

// Dates is an ordered sequence of points in time.
type Dates []time.Time

func (Dates) stateValue() {}

// Kind implements Value.
func (Dates) Kind() string { return "dates" }

// Format renders v for display and logs.
func Format(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Date:
		return val.Time().Format(time.RFC3339)
	case Dates:
		parts := make([]string, len(val))
		for i, d := range val {
			parts[i] = d.Format(time.RFC3339)
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Native unwraps v into a plain Go value (string, bool, int64, time.Time, []time.Time).
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Date:
		return val.Time()
	case Dates:
		return []time.Time(val)
	default:
		return nil
	}
}

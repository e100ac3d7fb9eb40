package state

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/shablon/pkg/domain"
)

// Constrain applies the picker options of a variable to an answer.
// Integers are floored to a multiple of RoundTo. Dates are floored to a
// multiple of MinuteInterval minutes with seconds cleared. Date lists are
// floored the same way, deduplicated, sorted and must hold between MinCount
// and MaxCount entries. Zero options impose nothing.
func Constrain(v Value, opts domain.VariableOptions) (Value, error) {
	switch x := v.(type) {
	case Int:
		if opts.RoundTo > 0 {
			step := int64(opts.RoundTo)
			return Int(int64(x) / step * step), nil
		}
		return x, nil
	case Date:
		return Date(floorMinutes(time.Time(x), opts.MinuteInterval)), nil
	case Dates:
		out := make(Dates, 0, len(x))
		for _, t := range x {
			t = floorMinutes(t, opts.MinuteInterval)
			if !slices.ContainsFunc(out, t.Equal) {
				out = append(out, t)
			}
		}
		slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
		if err := CheckCount(len(out), opts); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return v, nil
	}
}

// CheckCount reports whether n picked dates satisfy MinCount and MaxCount.
func CheckCount(n int, opts domain.VariableOptions) error {
	if opts.MinCount > 0 && n < opts.MinCount {
		return fmt.Errorf("pick at least %d date(s), got %d", opts.MinCount, n)
	}
	if opts.MaxCount > 0 && n > opts.MaxCount {
		return fmt.Errorf("pick at most %d date(s), got %d", opts.MaxCount, n)
	}
	return nil
}

func floorMinutes(t time.Time, interval int) time.Time {
	if interval <= 0 {
		return t
	}
	m := t.Minute() / interval * interval
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), m, 0, 0, t.Location())
}

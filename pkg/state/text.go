package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/shablon/pkg/domain"
)

// TextLayouts are the date layouts accepted by ParseText, tried in order.
var TextLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// ParseText converts a typed-in answer into the Value shape implied by a
// variable type tag. Unknown tags fall back to String. Date lists are comma
// separated.
func ParseText(typ, text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch typ {
	case domain.TypeBool:
		switch strings.ToLower(text) {
		case "true", "yes", "y", "1":
			return Bool(true), nil
		case "false", "no", "n", "0":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("%q is not a yes/no answer", text)
	case domain.TypeInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", text)
		}
		return Int(n), nil
	case domain.TypeDate:
		t, err := parseTime(text)
		if err != nil {
			return nil, err
		}
		return Date(t), nil
	case domain.TypeDateList:
		var dates Dates
		for _, part := range strings.Split(text, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			t, err := parseTime(part)
			if err != nil {
				return nil, err
			}
			dates = append(dates, t)
		}
		return dates, nil
	default:
		return String(text), nil
	}
}

func parseTime(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range TextLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date (use YYYY-MM-DD HH:MM)", text)
}

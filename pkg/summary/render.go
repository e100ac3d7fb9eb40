// Package summary renders the final message of a scenario run.
//
// A summary step's Message is a text/template. It is executed against the
// run's snapshot: every key is available as {{.key}} holding its plain Go value
// (string, bool, int64, time.Time, []time.Time).
package summary

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/aretw0/shablon/pkg/state"
)

// Layouts used by the date helpers.
const (
	DateLayout = "2 January 2006"
	TimeLayout = "15:04"
)

// Funcs returns the helpers available to summary templates.
//
//	date t         formats a time as "2 January 2006"
//	time t         formats a time as "15:04"
//	datesByDay ts  groups times by calendar day: ["2 January 2006 at 10:00, 11:30", ...]
//	join list sep  joins strings
//	has key        reports whether the snapshot holds key
func Funcs(s *state.Snapshot) template.FuncMap {
	return template.FuncMap{
		"date":       formatWith(DateLayout),
		"time":       formatWith(TimeLayout),
		"datesByDay": datesByDay,
		"join":       strings.Join,
		"has": func(key string) bool {
			_, ok := s.Get(key)
			return ok
		},
	}
}

// Render executes message against the snapshot.
// A message without template actions is returned unchanged.
func Render(message string, s *state.Snapshot) (string, error) {
	if !strings.Contains(message, "{{") {
		return message, nil
	}

	tmpl, err := template.New("summary").Funcs(Funcs(s)).Parse(message)
	if err != nil {
		return "", fmt.Errorf("parse summary template: %w", err)
	}

	data := make(map[string]any, s.Len())
	for k, v := range s.All() {
		data[k] = state.Native(v)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return sb.String(), nil
}

func formatWith(layout string) func(any) string {
	return func(v any) string {
		t, ok := v.(time.Time)
		if !ok {
			return ""
		}
		return t.Format(layout)
	}
}

func datesByDay(v any) []string {
	dates, ok := v.([]time.Time)
	if !ok || len(dates) == 0 {
		return nil
	}
	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var (
		lines []string
		day   string
		times []string
	)
	flush := func() {
		if day != "" {
			lines = append(lines, day+" at "+strings.Join(times, ", "))
		}
	}
	for _, d := range sorted {
		key := d.Format(DateLayout)
		if key != day {
			flush()
			day, times = key, nil
		}
		times = append(times, d.Format(TimeLayout))
	}
	flush()
	return lines
}

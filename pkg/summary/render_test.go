package summary_test

import (
	"testing"
	"time"

	"github.com/aretw0/shablon/pkg/state"
	"github.com/aretw0/shablon/pkg/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PlainText(t *testing.T) {
	out, err := summary.Render("Thank you!", state.New())
	require.NoError(t, err)
	assert.Equal(t, "Thank you!", out)
}

func TestRender_Values(t *testing.T) {
	s := state.New()
	s.Set("timeOfDay", state.String("evening"))
	s.Set("waiting", state.Bool(true))
	s.Set("hour", state.Int(9))
	s.Set("minute", state.Int(5))
	s.Set("date", state.Date(time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC)))

	msg := `{{if eq .timeOfDay "evening"}}Good evening{{else}}Good afternoon{{end}}!` +
		`{{if .waiting}} Sorry for the wait.{{end}} See you on {{date .date}} at {{printf "%02d:%02d" .hour .minute}}.` +
		`{{if has "who"}} unreachable{{end}}`

	out, err := summary.Render(msg, s)
	require.NoError(t, err)
	assert.Equal(t, "Good evening! Sorry for the wait. See you on 18 September 2025 at 09:05.", out)
}

func TestRender_DatesByDay(t *testing.T) {
	s := state.New()
	s.Set("dates", state.Dates{
		time.Date(2025, 9, 19, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 18, 11, 30, 0, 0, time.UTC),
		time.Date(2025, 9, 18, 10, 0, 0, 0, time.UTC),
	})

	out, err := summary.Render(`- {{join (datesByDay .dates) "\n- "}}`, s)
	require.NoError(t, err)
	assert.Equal(t, "- 18 September 2025 at 10:00, 11:30\n- 19 September 2025 at 09:00", out)
}

func TestRender_MissingDateRendersEmpty(t *testing.T) {
	out, err := summary.Render(`[{{date .nothing}}][{{time .nothing}}][{{join (datesByDay .nothing) ","}}]`, state.New())
	require.NoError(t, err)
	assert.Equal(t, "[][][]", out)
}

func TestRender_BadTemplate(t *testing.T) {
	_, err := summary.Render("{{if}}", state.New())
	assert.Error(t, err)
}

package shablon_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/pkg/adapters/memory"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *shablon.Engine {
	t.Helper()
	eng, err := shablon.New(memory.NewStore())
	require.NoError(t, err)
	return eng
}

func TestRunner_Consultation(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	id, _, err := eng.Seed(ctx, 1)
	require.NoError(t, err)

	input := strings.Join([]string{
		"",  // consultation: default yes
		"2", // evening
		"",  // greeting
		"2", // no long wait
		"2025-09-18 10:00",
		"", // hour
		"", // minute
		"2025-09-18 10:00,2025-09-18 11:30",
		"1", // the patient
		"",  // signature: default doctor
	}, "\n") + "\n"
	var out bytes.Buffer

	r := &shablon.Runner{Input: strings.NewReader(input), Output: &out, Headless: true}
	run, err := r.Run(ctx, eng, id)
	require.NoError(t, err)

	assert.True(t, run.Finished(), out.String())
	assert.Len(t, run.History(), 8)
	assert.Contains(t, out.String(), "## Summary")
	assert.Contains(t, out.String(), "18 September 2025 at 10:00, 11:30")
	assert.Contains(t, out.String(), "Dr. Eugene, dentist")
}

func TestRunner_RoutingFailureAsksAgain(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	b := draft.New(1, "gate")
	a := b.Step("Age").Kind(domain.KindForm).Start().
		Var("age", domain.TypeInt, "", nil).
		Var("consent", domain.TypeString, "", nil)
	ok := b.Step("Welcome").Terminal()
	a.When(`consent=="yes"`, ok, "Agreed")
	rep, err := eng.CompileGraph(ctx, b.Draft())
	require.NoError(t, err)

	var out bytes.Buffer
	r := &shablon.Runner{Input: strings.NewReader("abc\n18\nno\n18\nyes\n"), Output: &out}
	run, err := r.Run(ctx, eng, rep.TemplateID)
	require.NoError(t, err)

	assert.True(t, run.Finished())
	assert.Contains(t, out.String(), `"abc" is not an integer`)
	assert.Contains(t, out.String(), "No path leads on from here")
	assert.Contains(t, out.String(), "age> ")
	age, _ := run.Snapshot().Int("age")
	assert.Equal(t, int64(18), age)
}

func TestRunner_NumericTextAnswerRoutes(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	b := draft.New(1, "rooms")
	q := b.Step("Rooms").Kind(domain.KindForm).Start().Var("rooms", domain.TypeString, "", nil)
	two := b.Step("Two rooms").Terminal()
	other := b.Step("Other").Terminal()
	q.When("rooms==2", two, "Two")
	q.Go(other, "Other")
	rep, err := eng.CompileGraph(ctx, b.Draft())
	require.NoError(t, err)

	var out bytes.Buffer
	r := &shablon.Runner{Input: strings.NewReader("2\n"), Output: &out, Headless: true}
	run, err := r.Run(ctx, eng, rep.TemplateID)
	require.NoError(t, err)
	assert.Equal(t, "Two rooms", run.Current().Title)
}

func TestRunner_PickerOptions(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	id, _, err := eng.Seed(ctx, 1)
	require.NoError(t, err)

	input := strings.Join([]string{
		"",  // consultation
		"2", // evening
		"",  // greeting
		"2", // no long wait
		"2025-09-18 10:00",
		"",   // hour
		"22", // minute, floored to 15
		"",   // dates: at least one is required
		"2025-09-18 09:00,2025-09-18 09:15,2025-09-18 09:30,2025-09-18 09:45,2025-09-18 10:00,2025-09-18 10:15,2025-09-18 10:30",
		"2025-09-18 11:44,2025-09-18 10:07,2025-09-18 10:01",
		"1", // the patient
		"",  // signature
	}, "\n") + "\n"
	var out bytes.Buffer

	r := &shablon.Runner{Input: strings.NewReader(input), Output: &out, Headless: true}
	run, err := r.Run(ctx, eng, id)
	require.NoError(t, err)
	require.True(t, run.Finished(), out.String())

	assert.Contains(t, out.String(), "pick at least 1 date(s), got 0")
	assert.Contains(t, out.String(), "pick at most 6 date(s), got 7")

	minute, ok := run.Snapshot().Int("minute")
	require.True(t, ok)
	assert.Equal(t, int64(15), minute)

	dates, ok := run.Snapshot().Dates("dates")
	require.True(t, ok)
	require.Len(t, dates, 2, "10:07 and 10:01 collapse onto 10:00")
	assert.Equal(t, "10:00", dates[0].Format("15:04"))
	assert.Equal(t, "11:30", dates[1].Format("15:04"))
	assert.Contains(t, out.String(), "18 September 2025 at 10:00, 11:30")
}

func TestRunner_ExitAndEOF(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	id, _, err := eng.Seed(ctx, 1)
	require.NoError(t, err)

	var out bytes.Buffer
	r := &shablon.Runner{Input: strings.NewReader("exit\n"), Output: &out, Headless: true}
	run, err := r.Run(ctx, eng, id)
	require.NoError(t, err)
	assert.False(t, run.Finished())
	assert.Contains(t, out.String(), "Bye!")

	r = &shablon.Runner{Input: strings.NewReader(""), Output: &out, Headless: true}
	run, err = r.Run(ctx, eng, id)
	require.NoError(t, err)
	assert.False(t, run.Finished())
}

func TestRunner_RequiresIO(t *testing.T) {
	_, err := (&shablon.Runner{}).Run(context.Background(), newEngine(t), 1)
	assert.Error(t, err)
}

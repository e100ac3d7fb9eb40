package state_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/shablon/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_TypedAccessors(t *testing.T) {
	day := time.Date(2025, 9, 18, 15, 0, 0, 0, time.UTC)

	s := state.New()
	s.Set("timeOfDay", state.String("evening"))
	s.Set("waiting", state.Bool(true))
	s.Set("hour", state.Int(15))
	s.Set("date", state.Date(day))
	s.Set("dates", state.Dates{day, day.Add(time.Hour)})

	str, ok := s.String("timeOfDay")
	assert.True(t, ok)
	assert.Equal(t, "evening", str)

	b, ok := s.Bool("waiting")
	assert.True(t, ok)
	assert.True(t, b)

	n, ok := s.Int("hour")
	assert.True(t, ok)
	assert.Equal(t, int64(15), n)

	d, ok := s.Date("date")
	assert.True(t, ok)
	assert.True(t, d.Equal(day))

	dates, ok := s.Dates("dates")
	assert.True(t, ok)
	assert.Len(t, dates, 2)

	assert.Equal(t, []string{"date", "dates", "hour", "timeOfDay", "waiting"}, s.Keys())
}

func TestSnapshot_MismatchAndMissingAreAbsent(t *testing.T) {
	s := state.New()
	s.Set("hour", state.Int(15))

	_, ok := s.String("hour")
	assert.False(t, ok, "type mismatch yields absent")

	_, ok = s.Bool("missing")
	assert.False(t, ok, "missing key yields absent")

	_, ok = s.Date("hour")
	assert.False(t, ok)
}

func TestSnapshot_LastWriteWins(t *testing.T) {
	s := state.New()
	s.Set("who", state.String("self"))
	s.Set("who", state.Bool(false))

	_, ok := s.String("who")
	assert.False(t, ok)
	b, ok := s.Bool("who")
	assert.True(t, ok)
	assert.False(t, b)

	s.Set("who", nil)
	_, ok = s.Get("who")
	assert.False(t, ok, "nil removes the key")
}

func TestSnapshot_CopiesAreIndependent(t *testing.T) {
	day := time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC)
	src := state.Dates{day}

	s := state.New()
	s.Set("dates", src)
	src[0] = day.AddDate(1, 0, 0)

	got, _ := s.Dates("dates")
	assert.True(t, got[0].Equal(day), "Set copies date sequences")

	clone := s.Clone()
	clone.Set("extra", state.Int(1))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestSnapshot_JSON(t *testing.T) {
	payload := `{
		"timeOfDay": "day",
		"waiting": false,
		"hour": 15,
		"date": "2025-09-18T15:00:00Z",
		"dates": ["2025-09-18T15:00:00Z", "2025-09-19T10:15:00Z"],
		"skipped": null
	}`

	s := state.New()
	require.NoError(t, json.Unmarshal([]byte(payload), s))

	v, _ := s.Get("timeOfDay")
	assert.Equal(t, state.String("day"), v)
	v, _ = s.Get("waiting")
	assert.Equal(t, state.Bool(false), v)
	v, _ = s.Get("hour")
	assert.Equal(t, state.Int(15), v)
	_, ok := s.Date("date")
	assert.True(t, ok)
	dates, ok := s.Dates("dates")
	assert.True(t, ok)
	assert.Len(t, dates, 2)
	_, ok = s.Get("skipped")
	assert.False(t, ok)

	out, err := json.Marshal(s)
	require.NoError(t, err)

	again := state.New()
	require.NoError(t, json.Unmarshal(out, again))
	assert.Equal(t, s.Keys(), again.Keys())
}

func TestSnapshot_JSON_Rejects(t *testing.T) {
	cases := map[string]string{
		"float":  `{"x": 1.5}`,
		"object": `{"x": {"y": 1}}`,
		"mixed":  `{"x": ["2025-09-18T15:00:00Z", 3]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, json.Unmarshal([]byte(payload), state.New()))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "42", state.Format(state.Int(42)))
	assert.Equal(t, "true", state.Format(state.Bool(true)))
	assert.Equal(t, "hi", state.Format(state.String("hi")))
	assert.Equal(t, "2025-09-18T15:00:00Z",
		state.Format(state.Date(time.Date(2025, 9, 18, 15, 0, 0, 0, time.UTC))))
	assert.Equal(t, "", state.Format(nil))
}

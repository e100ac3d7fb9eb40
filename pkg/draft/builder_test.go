package draft_test

import (
	"testing"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SequentialLocalIDs(t *testing.T) {
	b := draft.New(7, "flow").Describe("desc")
	a := b.Step("A").Kind(domain.KindQuestion).Start()
	c := b.Step("B").Terminal()

	a.When(`ok==true`, c, "Yes").Go(c, "Otherwise")

	d := b.Draft()
	assert.Equal(t, domain.DraftTemplate{OwnerID: 7, Name: "flow", Description: "desc"}, d.Template)
	require.Len(t, d.Steps, 2)
	assert.Equal(t, domain.LocalID(1), d.Steps[0].LocalID)
	assert.Equal(t, domain.LocalID(2), d.Steps[1].LocalID)
	assert.Equal(t, 10, d.Steps[0].SortHint)
	assert.Equal(t, domain.KindInfo, d.Steps[1].Kind, "default kind")
	assert.True(t, d.Steps[0].IsStart)
	assert.True(t, d.Steps[1].IsTerminal)

	require.Len(t, d.Transitions, 2)
	assert.Equal(t, `{"if":"ok==true"}`, d.Transitions[0].Condition)
	assert.Empty(t, d.Transitions[1].Condition)
}

func TestBuilder_MarkStartClearsOthers(t *testing.T) {
	b := draft.New(1, "flow")
	a := b.Step("A").Start()
	c := b.Step("B").Start()

	d := b.Draft()
	assert.False(t, d.Steps[0].IsStart)
	assert.True(t, d.Steps[1].IsStart)

	assert.True(t, b.MarkStart(a.ID()))
	d = b.Draft()
	assert.True(t, d.Steps[0].IsStart)
	assert.False(t, d.Steps[1].IsStart)

	assert.False(t, b.MarkStart(99))
	_ = c
}

func TestBuilder_RemoveStepCascades(t *testing.T) {
	b := draft.New(1, "flow")
	a := b.Step("A").Start()
	mid := b.Step("B").Var("x", domain.TypeString, "", nil)
	end := b.Step("C").Terminal()
	a.Go(mid, "")
	mid.Go(end, "")
	a.Go(end, "")

	assert.True(t, b.RemoveStep(mid.ID()))
	assert.False(t, b.RemoveStep(mid.ID()))

	d := b.Draft()
	assert.Len(t, d.Steps, 2)
	assert.Empty(t, d.Variables)
	require.Len(t, d.Transitions, 1)
	assert.Equal(t, end.ID(), d.Transitions[0].ToLocalID)

	next := b.Step("D")
	assert.Equal(t, domain.LocalID(4), next.ID(), "local ids are never reused")
}

func TestBuilder_DraftIsASnapshot(t *testing.T) {
	b := draft.New(1, "flow")
	b.Step("A").Var("x", domain.TypeInt, "1", map[string]any{"roundTo": 15})

	d := b.Draft()
	b.Step("B").Var("y", domain.TypeInt, "", nil)

	assert.Len(t, d.Steps, 1)
	require.Len(t, d.Variables, 1)
	assert.JSONEq(t, `{"roundTo":15}`, string(d.Variables[0].Options))
}

func TestConsultation(t *testing.T) {
	d := draft.Consultation(3)

	assert.Equal(t, draft.ConsultationName, d.Template.Name)
	assert.Equal(t, int64(3), d.Template.OwnerID)
	assert.Len(t, d.Steps, 9)
	assert.Len(t, d.Transitions, 10)

	starts := 0
	for _, s := range d.Steps {
		if s.IsStart {
			starts++
		}
		assert.True(t, s.Kind.Valid(), s.Title)
	}
	assert.Equal(t, 1, starts)
	assert.True(t, d.Steps[8].IsTerminal)
	assert.Equal(t, domain.KindSummary, d.Steps[8].Kind)
}

func TestBuilder_UnencodableOptions(t *testing.T) {
	b := draft.New(1, "flow")
	b.Step("A").Start().
		Var("ok", domain.TypeInt, "", map[string]any{"roundTo": 15}).
		Var("bad", domain.TypeString, "", map[string]any{"callback": func() {}})

	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), `variable "bad"`)

	_, err := b.Build()
	assert.ErrorIs(t, err, b.Err())

	d := b.Draft()
	require.Len(t, d.Variables, 1)
	assert.Equal(t, "ok", d.Variables[0].Name)
}

func TestBuilder_Build(t *testing.T) {
	b := draft.New(1, "flow")
	b.Step("A").Start().Terminal()

	d, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, d.Steps, 1)
	assert.NoError(t, b.Err())
}

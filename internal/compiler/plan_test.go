package compiler_test

import (
	"testing"

	"github.com/aretw0/shablon/internal/compiler"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan_SortsAndNormalizesStart(t *testing.T) {
	d := domain.Draft{
		Template: domain.DraftTemplate{OwnerID: 1, Name: "t"},
		Steps: []domain.DraftStep{
			{LocalID: 1, Title: "late start", SortHint: 30, IsStart: true},
			{LocalID: 2, Title: "first", SortHint: 10},
			{LocalID: 3, Title: "tie a", SortHint: 20, IsStart: true},
			{LocalID: 4, Title: "tie b", SortHint: 20, IsStart: true},
		},
	}

	p, err := compiler.NewPlan(d)
	require.NoError(t, err)

	var order []domain.LocalID
	for _, s := range p.Steps {
		order = append(order, s.LocalID)
	}
	assert.Equal(t, []domain.LocalID{2, 3, 4, 1}, order, "stable by sort hint")
	assert.True(t, p.Steps[1].IsStart)
	assert.False(t, p.Steps[2].IsStart)
	assert.False(t, p.Steps[3].IsStart)
	assert.Equal(t, []domain.LocalID{4, 1}, p.ClearedStart)

	assert.True(t, d.Steps[0].IsStart, "the input draft is not modified")
}

func TestNewPlan_ReferencePolicy(t *testing.T) {
	d := domain.Draft{
		Template: domain.DraftTemplate{OwnerID: 1, Name: "t"},
		Steps:    []domain.DraftStep{{LocalID: 1}, {LocalID: 2}},
		Variables: []domain.DraftVariable{
			{StepLocalID: 1, Name: "ok"},
			{StepLocalID: 9, Name: "ghost"},
		},
		Transitions: []domain.DraftTransition{
			{FromLocalID: 1, ToLocalID: 2},
			{FromLocalID: 7, ToLocalID: 2},
			{FromLocalID: 1, ToLocalID: 8},
		},
	}

	p, err := compiler.NewPlan(d)
	require.NoError(t, err)

	assert.Len(t, p.Variables, 1)
	assert.Len(t, p.Transitions, 1)
	assert.Equal(t, []compiler.Drop{
		{Entity: "variable", Index: 1, LocalID: 9, Reason: compiler.ReasonUnknownStep},
		{Entity: "transition", Index: 1, LocalID: 7, Reason: compiler.ReasonUnknownFrom},
		{Entity: "transition", Index: 2, LocalID: 8, Reason: compiler.ReasonUnknownTo},
	}, p.Dropped)
	assert.Equal(t, "variable #1: unknown_step (local id 9)", p.Dropped[0].String())
}

func TestNewPlan_Invalid(t *testing.T) {
	tests := map[string]domain.Draft{
		"empty name": {Template: domain.DraftTemplate{Name: "  "}},
		"duplicate local id": {
			Template: domain.DraftTemplate{Name: "t"},
			Steps:    []domain.DraftStep{{LocalID: 1}, {LocalID: 1}},
		},
	}
	for name, d := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := compiler.NewPlan(d)
			assert.ErrorIs(t, err, domain.ErrInvalidDraft)
		})
	}
}

func TestCheckReferences(t *testing.T) {
	known := map[domain.LocalID]struct{}{1: {}}

	_, _, ok := compiler.CheckReferences(known, domain.DraftVariable{StepLocalID: 1})
	assert.True(t, ok)

	missing, reason, ok := compiler.CheckReferences(known, domain.DraftTransition{FromLocalID: 1, ToLocalID: 1 + 1})
	assert.False(t, ok)
	assert.Equal(t, domain.LocalID(2), missing)
	assert.Equal(t, compiler.ReasonUnknownTo, reason)
}

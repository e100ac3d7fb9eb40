package graph_test

import (
	"testing"

	"github.com/aretw0/shablon/internal/presentation/graph"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func fixture() ([]domain.Step, []domain.Transition) {
	steps := []domain.Step{
		{ID: 1, Title: "Ask", Kind: domain.KindQuestion, IsStart: true},
		{ID: 2, Title: "Branch", Kind: domain.KindBranch},
		{ID: 3, Title: "Form", Kind: domain.KindForm},
		{ID: 4, Title: "Note", Kind: domain.KindInfo},
		{ID: 5, Title: `Done "ok"`, Kind: domain.KindSummary, IsTerminal: true},
	}
	transitions := []domain.Transition{
		{ID: 10, FromStepID: 1, ToStepID: 2, Label: "Next"},
		{ID: 11, FromStepID: 2, ToStepID: 3, Label: "Day", Condition: `{"if":"timeOfDay==\"day\""}`},
		{ID: 12, FromStepID: 2, ToStepID: 4, Condition: `{"if":"timeOfDay!=\"day\""}`},
		{ID: 13, FromStepID: 3, ToStepID: 5},
		{ID: 14, FromStepID: 4, ToStepID: 5, Condition: `{"if":`},
	}
	return steps, transitions
}

func TestGenerateMermaid_Golden(t *testing.T) {
	steps, transitions := fixture()
	out := graph.GenerateMermaid(steps, transitions, &graph.Overlay{Visited: []int64{1, 2, 3, 2}, Current: 3})

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "overlay", []byte(out))
}

func TestGenerateMermaid_NoOverlay(t *testing.T) {
	steps, transitions := fixture()
	out := graph.GenerateMermaid(steps, transitions, nil)

	assert.Contains(t, out, "graph TD\n")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	assert.Equal(t, "graph TD\n", graph.GenerateMermaid(nil, nil, nil))
}

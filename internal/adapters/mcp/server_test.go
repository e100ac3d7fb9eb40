package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/pkg/adapters/memory"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftYAML = `
name: greeting
steps:
  - id: 1
    title: Time of day
    kind: branch
    start: true
    next:
      - {to: 2, label: Day, when: 'timeOfDay=="day"'}
      - {to: 3, label: Evening, when: 'timeOfDay=="evening"'}
  - id: 2
    title: Good afternoon
    terminal: true
  - id: 3
    title: Good evening
    kind: summary
    terminal: true
    message: 'Evening, {{.name}}'
`

func newServer(t *testing.T) (*Server, int64) {
	t.Helper()
	eng, err := shablon.New(memory.NewStore())
	require.NoError(t, err)
	s := NewServer(eng, WithDefaultOwner(3))

	rep, err := s.handleCompile(context.Background(), mcp.CallToolRequest{}, CompileArgs{Draft: draftYAML})
	require.NoError(t, err)
	return s, rep.TemplateID
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestListTemplates_DefaultOwner(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	list, err := s.handleListTemplates(ctx, mcp.CallToolRequest{}, TemplatesArgs{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].OwnerID)

	list, err = s.handleListTemplates(ctx, mcp.CallToolRequest{}, TemplatesArgs{Owner: 9})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStartAndNextStep(t *testing.T) {
	s, id := newServer(t)
	ctx := context.Background()

	start, err := s.handleStartStep(ctx, mcp.CallToolRequest{}, TemplateArgs{TemplateID: id})
	require.NoError(t, err)
	require.NotNil(t, start.Step)
	assert.Equal(t, "Time of day", start.Step.Step.Title)
	assert.Len(t, start.Step.Choices, 2)

	next, err := s.handleNextStep(ctx, mcp.CallToolRequest{}, NextArgs{
		StepID:  start.Step.Step.ID,
		Answers: `{"timeOfDay":"evening","name":"Ann"}`,
	})
	require.NoError(t, err)
	require.NotNil(t, next.Step)
	assert.Equal(t, "Good evening", next.Step.Step.Title)
	assert.Equal(t, "Evening, Ann", next.Summary)

	done, err := s.handleNextStep(ctx, mcp.CallToolRequest{}, NextArgs{StepID: next.Step.Step.ID})
	require.NoError(t, err)
	assert.True(t, done.Finished)

	_, err = s.handleNextStep(ctx, mcp.CallToolRequest{}, NextArgs{StepID: start.Step.Step.ID})
	assert.True(t, domain.IsRoutingFailure(err))

	_, err = s.handleNextStep(ctx, mcp.CallToolRequest{}, NextArgs{StepID: start.Step.Step.ID, Answers: "{"})
	assert.Error(t, err)
}

func TestStructuredHandlerBindsArguments(t *testing.T) {
	s, id := newServer(t)
	handler := mcp.NewStructuredToolHandler(s.handleStartStep)

	res, err := handler(context.Background(), call("start_step", map[string]any{"template_id": float64(id)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = handler(context.Background(), call("start_step", map[string]any{"template_id": float64(id + 100)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetGraph(t *testing.T) {
	s, id := newServer(t)
	ctx := context.Background()

	res, err := s.handleGetGraph(ctx, call("get_graph", map[string]any{"template_id": float64(id)}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"name":"greeting"`)

	res, err = s.handleGetGraph(ctx, call("get_graph", map[string]any{"template_id": float64(id), "format": "mermaid"}))
	require.NoError(t, err)
	text, ok = res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "graph TD")

	res, err = s.handleGetGraph(ctx, call("get_graph", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCompile_Rejects(t *testing.T) {
	s, _ := newServer(t)
	_, err := s.handleCompile(context.Background(), mcp.CallToolRequest{}, CompileArgs{Draft: draftYAML})
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

	_, err = s.handleCompile(context.Background(), mcp.CallToolRequest{}, CompileArgs{Draft: "bogus: field"})
	assert.Error(t, err)
}

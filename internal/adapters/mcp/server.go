// Package mcp exposes scenario traversal as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/internal/compiler"
	"github.com/aretw0/shablon/internal/logging"
	"github.com/aretw0/shablon/internal/runtime"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/aretw0/shablon/pkg/state"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine is the part of *shablon.Engine the tools need.
type Engine interface {
	Templates(ctx context.Context, ownerID int64) ([]domain.TemplateSummary, error)
	Graph(ctx context.Context, templateID int64) (shablon.Graph, error)
	Mermaid(ctx context.Context, templateID int64, run *runtime.Run) (string, error)
	CompileGraph(ctx context.Context, d domain.Draft) (compiler.Report, error)
	StartStep(ctx context.Context, templateID int64) (domain.Step, error)
	StepByID(ctx context.Context, id int64) (domain.Step, error)
	View(ctx context.Context, stepID int64) (shablon.StepView, error)
	NextStep(ctx context.Context, current domain.Step, snapshot *state.Snapshot) (*domain.Step, error)
	Summary(step domain.Step, snapshot *state.Snapshot) (string, error)
}

// StepResponse is the structured result of start_step and next_step.
type StepResponse struct {
	Finished bool              `json:"finished" jsonschema_description:"True when the previous step was terminal and nothing follows"`
	Step     *shablon.StepView `json:"step,omitempty" jsonschema_description:"The step to show, with its variables and answer choices"`
	Summary  string            `json:"summary,omitempty" jsonschema_description:"Rendered final message of a summary step"`
}

// TemplatesArgs selects an owner.
type TemplatesArgs struct {
	Owner int64 `json:"owner"`
}

// TemplateArgs selects a template.
type TemplateArgs struct {
	TemplateID int64  `json:"template_id"`
	Format     string `json:"format"`
}

// NextArgs carries the current step and the answers collected so far.
type NextArgs struct {
	StepID  int64  `json:"step_id"`
	Answers string `json:"answers"`
}

// CompileArgs carries a YAML draft.
type CompileArgs struct {
	Owner int64  `json:"owner"`
	Draft string `json:"draft"`
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine       Engine
	defaultOwner int64
	logger       *slog.Logger
	mcpServer    *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaultOwner sets the owner used when a tool call names none.
func WithDefaultOwner(ownerID int64) Option {
	return func(s *Server) {
		s.defaultOwner = ownerID
	}
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:       engine,
		defaultOwner: 1,
		logger:       logging.NewNop(),
		mcpServer:    server.NewMCPServer("shablon-mcp", strings.TrimSpace(shablon.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the scenario templates of an owner, most recently updated first."),
		mcp.WithNumber("owner", mcp.Description("Owner id (optional)")),
	), mcp.NewStructuredToolHandler(s.handleListTemplates))

	s.mcpServer.AddTool(mcp.NewTool("start_step",
		mcp.WithDescription("Return the start step of a template with its fields and answer choices."),
		mcp.WithNumber("template_id", mcp.Required(), mcp.Description("Template id")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartStep))

	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Resolve the step that follows the given one under the collected answers."),
		mcp.WithNumber("step_id", mcp.Required(), mcp.Description("Current step id")),
		mcp.WithString("answers", mcp.Description(`JSON object of every answer so far, e.g. {"timeOfDay":"evening"}`)),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleNextStep))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a whole template for introspection, as JSON or as a Mermaid flowchart."),
		mcp.WithNumber("template_id", mcp.Required(), mcp.Description("Template id")),
		mcp.WithString("format", mcp.Enum("json", "mermaid"), mcp.Description("Output format (default json)")),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("compile_draft",
		mcp.WithDescription("Compile a YAML draft into a new template."),
		mcp.WithString("draft", mcp.Required(), mcp.Description("YAML draft with name and steps")),
		mcp.WithNumber("owner", mcp.Description("Owner id when the draft names none (optional)")),
	), mcp.NewStructuredToolHandler(s.handleCompile))
}

func (s *Server) owner(requested int64) int64 {
	if requested == 0 {
		return s.defaultOwner
	}
	return requested
}

func (s *Server) handleListTemplates(ctx context.Context, _ mcp.CallToolRequest, args TemplatesArgs) ([]domain.TemplateSummary, error) {
	list, err := s.engine.Templates(ctx, s.owner(args.Owner))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return list, nil
}

func (s *Server) handleStartStep(ctx context.Context, _ mcp.CallToolRequest, args TemplateArgs) (StepResponse, error) {
	start, err := s.engine.StartStep(ctx, args.TemplateID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("start step: %w", err)
	}
	view, err := s.engine.View(ctx, start.ID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("start step: %w", err)
	}
	return StepResponse{Step: &view}, nil
}

func (s *Server) handleNextStep(ctx context.Context, _ mcp.CallToolRequest, args NextArgs) (StepResponse, error) {
	snapshot := state.New()
	if args.Answers != "" {
		if err := json.Unmarshal([]byte(args.Answers), snapshot); err != nil {
			return StepResponse{}, fmt.Errorf("answers rejected: %w", err)
		}
	}

	current, err := s.engine.StepByID(ctx, args.StepID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("next step: %w", err)
	}
	next, err := s.engine.NextStep(ctx, current, snapshot)
	if err != nil {
		if domain.IsRoutingFailure(err) {
			s.logger.Warn("MCP next_step: no route", "step_id", current.ID, "err", err)
		}
		return StepResponse{}, fmt.Errorf("next step: %w", err)
	}
	if next == nil {
		return StepResponse{Finished: true}, nil
	}

	view, err := s.engine.View(ctx, next.ID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("next step: %w", err)
	}
	resp := StepResponse{Step: &view}
	if next.Kind == domain.KindSummary {
		if resp.Summary, err = s.engine.Summary(*next, snapshot); err != nil {
			return StepResponse{}, fmt.Errorf("render summary: %w", err)
		}
	}
	return resp, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if request.GetString("format", "json") == "mermaid" {
		chart, err := s.engine.Mermaid(ctx, int64(id), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("mermaid failed: %v", err)), nil
		}
		return mcp.NewToolResultText(chart), nil
	}

	g, err := s.engine.Graph(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(g)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCompile(ctx context.Context, _ mcp.CallToolRequest, args CompileArgs) (compiler.Report, error) {
	d, err := draft.LoadYAML(strings.NewReader(args.Draft), s.owner(args.Owner))
	if err != nil {
		return compiler.Report{}, err
	}
	rep, err := s.engine.CompileGraph(ctx, d)
	if err != nil {
		return compiler.Report{}, fmt.Errorf("compile: %w", err)
	}
	return rep, nil
}

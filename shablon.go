package shablon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/shablon/internal/compiler"
	"github.com/aretw0/shablon/internal/logging"
	"github.com/aretw0/shablon/internal/presentation/graph"
	"github.com/aretw0/shablon/internal/runtime"
	"github.com/aretw0/shablon/pkg/adapters/sqlite"
	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/aretw0/shablon/pkg/ports"
	"github.com/aretw0/shablon/pkg/state"
	"github.com/aretw0/shablon/pkg/summary"
)

// Engine is the high-level entry point of the library.
// It binds a graph store to a resolver and a compiler.
type Engine struct {
	store    ports.GraphStore
	resolver *runtime.Resolver
	compiler *compiler.Compiler
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLocker serializes compilations across processes sharing the store.
// A zero ttl keeps the compiler default.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// New builds an Engine over an already opened store. The engine does not own
// the store unless Close is called.
func New(store ports.GraphStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("graph store is required")
	}
	eng := &Engine{store: store}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.resolver = runtime.NewResolver(store,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	)

	compilerOpts := []compiler.Option{
		compiler.WithLogger(eng.logger),
		compiler.WithLifecycleHooks(eng.hooks),
	}
	if eng.locker != nil {
		compilerOpts = append(compilerOpts, compiler.WithLocker(eng.locker, eng.lockTTL))
	}
	eng.compiler = compiler.New(store, compilerOpts...)

	return eng, nil
}

// Open opens (and migrates) the SQLite database at path and builds an Engine on it.
// Close releases the database.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var probe Engine
	for _, opt := range opts {
		opt(&probe)
	}
	logger := probe.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	opts = append(opts[:len(opts):len(opts)], WithLogger(logger.With("db", path)))

	eng, err := New(store, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return eng, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the graph store the engine reads from and writes to.
func (e *Engine) Store() ports.GraphStore {
	return e.store
}

// StartStep returns the start step of a template.
func (e *Engine) StartStep(ctx context.Context, templateID int64) (domain.Step, error) {
	return e.store.StartStep(ctx, templateID)
}

// StepByID returns one step.
func (e *Engine) StepByID(ctx context.Context, id int64) (domain.Step, error) {
	return e.store.Step(ctx, id)
}

// VariablesForStep returns the variables a step declares, in insertion order.
func (e *Engine) VariablesForStep(ctx context.Context, stepID int64) ([]domain.Variable, error) {
	return e.store.Variables(ctx, stepID)
}

// NextStep resolves the step that follows current under snapshot.
// It returns (nil, nil) when current is terminal and nothing leaves it, and a
// *domain.RoutingError when current is not terminal and no transition applies.
func (e *Engine) NextStep(ctx context.Context, current domain.Step, snapshot *state.Snapshot) (*domain.Step, error) {
	return e.resolver.NextStep(ctx, current, snapshot)
}

// Resolve is NextStep with the full resolution detail (outcome, ignored fragments).
func (e *Engine) Resolve(ctx context.Context, current domain.Step, snapshot *state.Snapshot) (runtime.Resolution, error) {
	return e.resolver.Resolve(ctx, current, snapshot)
}

// CompileGraph persists a draft as one unit of work.
func (e *Engine) CompileGraph(ctx context.Context, d domain.Draft) (compiler.Report, error) {
	return e.compiler.Compile(ctx, d)
}

// NewRun starts a traversal of a template at its start step.
func (e *Engine) NewRun(ctx context.Context, templateID int64) (*runtime.Run, error) {
	return runtime.NewRun(ctx, e.resolver, templateID)
}

// ResumeRun continues a traversal from step with a previously collected snapshot.
func (e *Engine) ResumeRun(step domain.Step, snapshot *state.Snapshot) *runtime.Run {
	return runtime.ResumeRun(e.resolver, step, snapshot)
}

// Templates lists the templates of an owner, most recently updated first.
func (e *Engine) Templates(ctx context.Context, ownerID int64) ([]domain.TemplateSummary, error) {
	return e.store.Templates(ctx, ownerID)
}

// Template returns one template.
func (e *Engine) Template(ctx context.Context, id int64) (domain.Template, error) {
	return e.store.Template(ctx, id)
}

// UpdateTemplate renames or re-describes a template.
func (e *Engine) UpdateTemplate(ctx context.Context, id int64, name, description string) error {
	return e.store.UpdateTemplate(ctx, id, name, description)
}

// UpdateStep edits the displayed texts of a step.
func (e *Engine) UpdateStep(ctx context.Context, id int64, title, content, message string) error {
	return e.store.UpdateStep(ctx, id, title, content, message)
}

// DeleteTemplate removes a template with its steps, variables and transitions.
func (e *Engine) DeleteTemplate(ctx context.Context, id int64) error {
	if err := e.store.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	e.logger.Info("template deleted", "template_id", id)
	return nil
}

// StepView is everything a renderer needs to present one step.
type StepView struct {
	Step      domain.Step        `json:"step"`
	Variables []domain.Variable  `json:"variables"`
	Choices   []condition.Choice `json:"choices"`
}

// View loads a step with its variables and the answer choices derived from its transitions.
func (e *Engine) View(ctx context.Context, stepID int64) (StepView, error) {
	step, err := e.store.Step(ctx, stepID)
	if err != nil {
		return StepView{}, err
	}
	vars, err := e.store.Variables(ctx, stepID)
	if err != nil {
		return StepView{}, err
	}
	transitions, err := e.store.TransitionsFrom(ctx, stepID)
	if err != nil {
		return StepView{}, err
	}
	return StepView{Step: step, Variables: vars, Choices: condition.Choices(transitions)}, nil
}

// Summary renders the message of a summary step against the collected answers.
func (e *Engine) Summary(step domain.Step, snapshot *state.Snapshot) (string, error) {
	return summary.Render(step.Message, snapshot)
}

// Graph is a persisted template with every step and transition.
type Graph struct {
	Template    domain.Template     `json:"template"`
	Steps       []domain.Step       `json:"steps"`
	Transitions []domain.Transition `json:"transitions"`
}

// Graph loads a whole template.
func (e *Engine) Graph(ctx context.Context, templateID int64) (Graph, error) {
	tpl, err := e.store.Template(ctx, templateID)
	if err != nil {
		return Graph{}, err
	}
	steps, err := e.store.Steps(ctx, templateID)
	if err != nil {
		return Graph{}, err
	}
	transitions, err := e.store.Transitions(ctx, templateID)
	if err != nil {
		return Graph{}, err
	}
	return Graph{Template: tpl, Steps: steps, Transitions: transitions}, nil
}

// Mermaid exports a template as a Mermaid flowchart. When run is not nil its
// visited steps and current position are highlighted.
func (e *Engine) Mermaid(ctx context.Context, templateID int64, run *runtime.Run) (string, error) {
	g, err := e.Graph(ctx, templateID)
	if err != nil {
		return "", err
	}
	var overlay *graph.Overlay
	if run != nil {
		overlay = &graph.Overlay{Visited: run.History(), Current: run.Current().ID}
	}
	return graph.GenerateMermaid(g.Steps, g.Transitions, overlay), nil
}

// Seed installs the bundled consultation scenario for owner unless a template
// with the same name already exists. It returns the template id and whether it
// was created.
func (e *Engine) Seed(ctx context.Context, ownerID int64) (int64, bool, error) {
	existing, err := e.store.Templates(ctx, ownerID)
	if err != nil {
		return 0, false, fmt.Errorf("seed: %w", err)
	}
	for _, t := range existing {
		if t.Name == draft.ConsultationName {
			e.logger.Debug("seed skipped", "template_id", t.ID)
			return t.ID, false, nil
		}
	}
	rep, err := e.compiler.Compile(ctx, draft.Consultation(ownerID))
	if err != nil {
		return 0, false, fmt.Errorf("seed: %w", err)
	}
	return rep.TemplateID, true, nil
}

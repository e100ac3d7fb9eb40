package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/shablon/internal/logging"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed compilation can hold the owner lock.
const DefaultLockTTL = 30 * time.Second

// Report describes a committed compilation.
type Report struct {
	TemplateID int64 `json:"template_id"`
	// StepIDs maps every draft local id to its storage id.
	StepIDs      map[domain.LocalID]int64 `json:"step_ids"`
	Variables    int                      `json:"variables"`
	Transitions  int                      `json:"transitions"`
	Dropped      []Drop                   `json:"dropped,omitempty"`
	ClearedStart []domain.LocalID         `json:"cleared_start,omitempty"`
}

// Compiler writes drafts to a graph store, one unit of work per draft.
type Compiler struct {
	store   ports.GraphWriter
	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithLocker serializes compilations of the same owner across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(c *Compiler) {
		c.locker = locker
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Compiler) {
		c.hooks = hooks
	}
}

// New creates a compiler writing to store.
func New(store ports.GraphWriter, opts ...Option) *Compiler {
	c := &Compiler{
		store:   store,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile persists d atomically: the template, every step in sort order, then the
// variables and transitions whose references resolve. Either all of it commits or
// nothing does. Storage constraint failures surface as *domain.IntegrityError.
func (c *Compiler) Compile(ctx context.Context, d domain.Draft) (rep Report, err error) {
	start := time.Now()
	event := &domain.CompileEvent{Timestamp: start}
	defer func() {
		event.Err = err
		event.Duration = time.Since(start)
		if c.hooks.OnCompile != nil {
			c.hooks.OnCompile(ctx, event)
		}
	}()

	plan, err := NewPlan(d)
	if err != nil {
		return Report{}, err
	}
	event.Steps, event.Variables, event.Transitions = len(plan.Steps), len(plan.Variables), len(plan.Transitions)
	event.Dropped = len(plan.Dropped)

	log := c.logger.With("template", plan.Template.Name, "owner_id", plan.Template.OwnerID)
	for _, drop := range plan.Dropped {
		log.Warn("dropping draft row with unresolved reference",
			"entity", drop.Entity, "index", drop.Index, "local_id", drop.LocalID, "reason", drop.Reason)
	}
	if len(plan.ClearedStart) > 0 {
		log.Warn("draft has several start steps, keeping the first", "cleared", plan.ClearedStart)
	}

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, ports.CompileLockKey(plan.Template.OwnerID), c.lockTTL)
		if err != nil {
			return Report{}, fmt.Errorf("compile lock: %w", err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				log.Warn("failed to release compile lock", "error", uerr)
			}
		}()
	}

	rep, err = c.execute(ctx, plan)
	if err != nil {
		return Report{}, fmt.Errorf("compile %q: %w", plan.Template.Name, err)
	}
	event.TemplateID = rep.TemplateID

	log.Info("template compiled",
		"template_id", rep.TemplateID,
		"steps", len(rep.StepIDs),
		"variables", rep.Variables,
		"transitions", rep.Transitions,
		"dropped", len(rep.Dropped))
	return rep, nil
}

func (c *Compiler) execute(ctx context.Context, plan Plan) (Report, error) {
	rep := Report{
		StepIDs:      make(map[domain.LocalID]int64, len(plan.Steps)),
		Dropped:      plan.Dropped,
		ClearedStart: plan.ClearedStart,
	}

	err := c.store.Atomic(ctx, func(tx ports.GraphTx) error {
		templateID, err := tx.InsertTemplate(ctx, domain.Template{
			OwnerID:     plan.Template.OwnerID,
			Name:        plan.Template.Name,
			Description: plan.Template.Description,
		})
		if err != nil {
			return err
		}
		rep.TemplateID = templateID

		for _, s := range plan.Steps {
			id, err := tx.InsertStep(ctx, domain.Step{
				TemplateID: templateID,
				Title:      s.Title,
				Content:    s.Content,
				Message:    s.Message,
				Kind:       s.Kind,
				IsStart:    s.IsStart,
				IsTerminal: s.IsTerminal,
				SortHint:   s.SortHint,
			})
			if err != nil {
				return err
			}
			rep.StepIDs[s.LocalID] = id
		}

		for _, v := range plan.Variables {
			if _, err := tx.InsertVariable(ctx, domain.Variable{
				StepID:       rep.StepIDs[v.StepLocalID],
				Name:         v.Name,
				Type:         v.Type,
				DefaultValue: v.DefaultValue,
				Options:      v.Options,
			}); err != nil {
				return err
			}
			rep.Variables++
		}

		for _, t := range plan.Transitions {
			if _, err := tx.InsertTransition(ctx, domain.Transition{
				FromStepID: rep.StepIDs[t.FromLocalID],
				ToStepID:   rep.StepIDs[t.ToLocalID],
				Label:      t.Label,
				Condition:  t.Condition,
			}); err != nil {
				return err
			}
			rep.Transitions++
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return rep, nil
}

// Package runtime picks the next step of a scenario run.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/shablon/internal/logging"
	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
	"github.com/aretw0/shablon/pkg/state"
)

// Resolution is the outcome of evaluating the outgoing transitions of one step.
type Resolution struct {
	// Transition is the chosen edge; nil when Outcome is finished or routing_failure.
	Transition *domain.Transition
	Outcome    domain.ResolveOutcome
	// Considered is the number of outgoing transitions evaluated.
	Considered int
	// Ignored collects the condition fragments that did not parse, per transition id.
	Ignored map[int64][]string
}

// Select applies the routing rule to transitions, which must be in storage order:
// the first conditional transition whose condition holds wins; otherwise the first
// unconditional one; otherwise nothing. Transitions whose payload does not parse
// at all count as unconditional.
func Select(transitions []domain.Transition, s *state.Snapshot) Resolution {
	res := Resolution{Considered: len(transitions)}
	fallback := -1

	for i := range transitions {
		expr := condition.ParsePayload(transitions[i].Condition)
		if expr.HasIgnored() {
			if res.Ignored == nil {
				res.Ignored = make(map[int64][]string)
			}
			res.Ignored[transitions[i].ID] = expr.Ignored
		}
		if expr.Unconditional() {
			if fallback < 0 {
				fallback = i
			}
			continue
		}
		if res.Transition == nil && expr.Matches(s) {
			res.Transition = &transitions[i]
			res.Outcome = domain.OutcomeConditional
		}
	}

	if res.Transition == nil && fallback >= 0 {
		res.Transition = &transitions[fallback]
		res.Outcome = domain.OutcomeFallback
	}
	return res
}

// Resolver selects next steps by reading the graph store. It only reads, so one
// resolver can serve any number of concurrent runs, each with its own snapshot.
type Resolver struct {
	graph  ports.GraphReader
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ResolverOption {
	return func(r *Resolver) {
		r.hooks = hooks
	}
}

// NewResolver creates a resolver over graph.
func NewResolver(graph ports.GraphReader, opts ...ResolverOption) *Resolver {
	r := &Resolver{graph: graph, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve evaluates the outgoing transitions of step against s.
// A terminal step without a route finishes the run. A non-terminal step without
// a route returns the resolution together with a *domain.RoutingError.
func (r *Resolver) Resolve(ctx context.Context, step domain.Step, s *state.Snapshot) (Resolution, error) {
	return r.resolve(ctx, "", step, s)
}

func (r *Resolver) resolve(ctx context.Context, runID string, step domain.Step, s *state.Snapshot) (Resolution, error) {
	start := time.Now()

	transitions, err := r.graph.TransitionsFrom(ctx, step.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("load transitions of step %d: %w", step.ID, err)
	}

	res := Select(transitions, s)
	if res.Transition == nil {
		if step.IsTerminal {
			res.Outcome = domain.OutcomeFinished
		} else {
			res.Outcome = domain.OutcomeRoutingFailure
		}
	}

	log := r.logger.With("step_id", step.ID, "template_id", step.TemplateID)
	if runID != "" {
		log = log.With("run_id", runID)
	}
	for id, fragments := range res.Ignored {
		log.Warn("ignoring malformed condition fragments", "transition_id", id, "fragments", fragments)
	}

	event := &domain.ResolveEvent{
		Timestamp:  start,
		RunID:      runID,
		TemplateID: step.TemplateID,
		StepID:     step.ID,
		Outcome:    res.Outcome,
	}
	if res.Transition != nil {
		event.TransitionID = res.Transition.ID
		event.ToStepID = res.Transition.ToStepID
	}
	event.Duration = time.Since(start)
	if r.hooks.OnResolve != nil {
		r.hooks.OnResolve(ctx, event)
	}
	log.Debug("transition resolved",
		"outcome", res.Outcome, "transition_id", event.TransitionID, "to_step_id", event.ToStepID, "considered", res.Considered)

	if res.Outcome == domain.OutcomeRoutingFailure {
		return res, &domain.RoutingError{StepID: step.ID, TemplateID: step.TemplateID, Considered: res.Considered}
	}
	return res, nil
}

// NextStep returns the step that follows current under s, or nil when current
// is terminal and nothing leaves it.
func (r *Resolver) NextStep(ctx context.Context, current domain.Step, s *state.Snapshot) (*domain.Step, error) {
	return r.next(ctx, "", current, s)
}

func (r *Resolver) next(ctx context.Context, runID string, current domain.Step, s *state.Snapshot) (*domain.Step, error) {
	res, err := r.resolve(ctx, runID, current, s)
	if err != nil {
		return nil, err
	}
	if res.Transition == nil {
		return nil, nil
	}
	next, err := r.graph.Step(ctx, res.Transition.ToStepID)
	if err != nil {
		return nil, fmt.Errorf("load step %d: %w", res.Transition.ToStepID, err)
	}
	return &next, nil
}

package domain

import (
	"context"
	"time"
)

// ResolveOutcome classifies how the next step was chosen.
type ResolveOutcome string

const (
	// OutcomeConditional means a conditional transition matched.
	OutcomeConditional ResolveOutcome = "conditional"
	// OutcomeFallback means no condition matched and an unconditional transition was taken.
	OutcomeFallback ResolveOutcome = "fallback"
	// OutcomeFinished means the step is terminal and nothing leaves it.
	OutcomeFinished ResolveOutcome = "finished"
	// OutcomeRoutingFailure means the step is not terminal and nothing leaves it.
	OutcomeRoutingFailure ResolveOutcome = "routing_failure"
)

// ResolveEvent is emitted after every transition resolution.
type ResolveEvent struct {
	Timestamp    time.Time      `json:"timestamp"`
	RunID        string         `json:"run_id,omitempty"`
	TemplateID   int64          `json:"template_id"`
	StepID       int64          `json:"step_id"`
	TransitionID int64          `json:"transition_id,omitempty"`
	ToStepID     int64          `json:"to_step_id,omitempty"`
	Outcome      ResolveOutcome `json:"outcome"`
	Duration     time.Duration  `json:"duration"`
}

// CompileEvent is emitted after every compilation, committed or not.
type CompileEvent struct {
	Timestamp   time.Time     `json:"timestamp"`
	TemplateID  int64         `json:"template_id,omitempty"`
	Steps       int           `json:"steps"`
	Variables   int           `json:"variables"`
	Transitions int           `json:"transitions"`
	Dropped     int           `json:"dropped"`
	Err         error         `json:"-"`
	Duration    time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnResolve func(context.Context, *ResolveEvent)
	OnCompile func(context.Context, *CompileEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnResolve: func(ctx context.Context, e *ResolveEvent) {
			if h.OnResolve != nil {
				h.OnResolve(ctx, e)
			}
			if other.OnResolve != nil {
				other.OnResolve(ctx, e)
			}
		},
		OnCompile: func(ctx context.Context, e *CompileEvent) {
			if h.OnCompile != nil {
				h.OnCompile(ctx, e)
			}
			if other.OnCompile != nil {
				other.OnCompile(ctx, e)
			}
		},
	}
}

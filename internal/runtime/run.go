package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/state"
	"github.com/google/uuid"
)

// ErrRunFinished is returned when advancing a run that already ended.
var ErrRunFinished = errors.New("run already finished")

// Run is one linear traversal of a template. It owns its snapshot and must not
// be shared between goroutines.
type Run struct {
	id       string
	resolver *Resolver
	current  domain.Step
	snapshot *state.Snapshot
	history  []int64
	finished bool
}

// NewRun starts a run at the start step of templateID with an empty snapshot.
func NewRun(ctx context.Context, resolver *Resolver, templateID int64) (*Run, error) {
	start, err := resolver.graph.StartStep(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return ResumeRun(resolver, start, state.New()), nil
}

// ResumeRun continues a traversal from step with an existing snapshot.
func ResumeRun(resolver *Resolver, step domain.Step, s *state.Snapshot) *Run {
	if s == nil {
		s = state.New()
	}
	return &Run{
		id:       uuid.NewString(),
		resolver: resolver,
		current:  step,
		snapshot: s,
		history:  []int64{step.ID},
	}
}

// ID identifies the run in logs and events.
func (r *Run) ID() string { return r.id }

// Current returns the step being shown.
func (r *Run) Current() domain.Step { return r.current }

// Snapshot returns the answers collected so far.
func (r *Run) Snapshot() *state.Snapshot { return r.snapshot }

// History returns the ids of the visited steps, in order.
func (r *Run) History() []int64 { return append([]int64(nil), r.history...) }

// Finished reports whether the run reached a terminal step with no way out.
func (r *Run) Finished() bool { return r.finished }

// Answer records a value. A nil value removes the key.
func (r *Run) Answer(key string, value state.Value) {
	r.snapshot.Set(key, value)
}

// Advance moves to the next step. When the current step is terminal and nothing
// leaves it, the run is finished and Advance returns (nil, nil).
// A routing failure leaves the run on the current step so the caller can fix
// the answers and retry.
func (r *Run) Advance(ctx context.Context) (*domain.Step, error) {
	if r.finished {
		return nil, ErrRunFinished
	}
	next, err := r.resolver.next(ctx, r.id, r.current, r.snapshot)
	if err != nil {
		return nil, fmt.Errorf("advance run %s: %w", r.id, err)
	}
	if next == nil {
		r.finished = true
		return nil, nil
	}
	r.current = *next
	r.history = append(r.history, next.ID)
	return next, nil
}

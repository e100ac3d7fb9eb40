// Package validator lints persisted scenario graphs for authoring mistakes that
// the resolver tolerates silently.
package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
)

// ErrInvalidGraph is returned by ValidateGraph when at least one error-level issue was found.
var ErrInvalidGraph = errors.New("invalid graph")

// Severity ranks an issue.
type Severity string

const (
	// SeverityError marks a graph that will fail at run time.
	SeverityError Severity = "error"
	// SeverityWarning marks a graph that may fail or behave unexpectedly.
	SeverityWarning Severity = "warning"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity"`
	StepID   int64    `json:"step_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.StepID == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: step %d: %s", i.Severity, i.StepID, i.Message)
}

// Inspect walks the graph of a template from its start step and reports:
// a missing start step, steps the walk never reaches, non-terminal steps with
// no way out, non-terminal steps whose way out depends only on conditions, and
// conditions with fragments the parser ignored.
func Inspect(ctx context.Context, graph ports.GraphReader, templateID int64) ([]Issue, error) {
	steps, err := graph.Steps(ctx, templateID)
	if err != nil {
		return nil, err
	}
	transitions, err := graph.Transitions(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	outgoing := make(map[int64][]domain.Transition, len(steps))
	for _, t := range transitions {
		outgoing[t.FromStepID] = append(outgoing[t.FromStepID], t)
		if expr := condition.ParsePayload(t.Condition); expr.HasIgnored() {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				StepID:   t.FromStepID,
				Message:  fmt.Sprintf("transition %d ignores %q", t.ID, strings.Join(expr.Ignored, `", "`)),
			})
		}
	}

	var start *domain.Step
	for i := range steps {
		if steps[i].IsStart {
			start = &steps[i]
			break
		}
	}
	if start == nil {
		return append(issues, Issue{Severity: SeverityError, Message: "no start step"}), nil
	}

	// Crawl
	visited := map[int64]bool{}
	queue := []int64{start.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, t := range outgoing[current] {
			if !visited[t.ToStepID] {
				queue = append(queue, t.ToStepID)
			}
		}
	}

	for _, s := range steps {
		if !visited[s.ID] {
			issues = append(issues, Issue{Severity: SeverityWarning, StepID: s.ID, Message: fmt.Sprintf("%q is unreachable from the start step", s.Title)})
		}
		if s.IsTerminal {
			continue
		}
		out := outgoing[s.ID]
		if len(out) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, StepID: s.ID, Message: fmt.Sprintf("%q is not terminal and has no outgoing transition", s.Title)})
			continue
		}
		fallback := false
		for _, t := range out {
			if condition.ParsePayload(t.Condition).Unconditional() {
				fallback = true
				break
			}
		}
		if !fallback {
			issues = append(issues, Issue{Severity: SeverityWarning, StepID: s.ID, Message: fmt.Sprintf("%q has no unconditional fallback, unmatched answers stop the run", s.Title)})
		}
	}
	return issues, nil
}

// ValidateGraph runs Inspect and turns error-level issues into an error wrapping ErrInvalidGraph.
func ValidateGraph(ctx context.Context, graph ports.GraphReader, templateID int64) ([]Issue, error) {
	issues, err := Inspect(ctx, graph, templateID)
	if err != nil {
		return nil, err
	}

	var errs []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i.String())
		}
	}
	if len(errs) > 0 {
		return issues, fmt.Errorf("%w: found %d errors:\n- %s", ErrInvalidGraph, len(errs), strings.Join(errs, "\n- "))
	}
	return issues, nil
}

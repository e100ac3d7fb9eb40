// Package compiler turns author-time drafts into persisted scenario graphs.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/shablon/pkg/domain"
)

// DropReason tells why a draft row was left out of the persisted graph.
type DropReason string

const (
	// ReasonUnknownStep: the variable's step local id matches no draft step.
	ReasonUnknownStep DropReason = "unknown_step"
	// ReasonUnknownFrom: the transition's source local id matches no draft step.
	ReasonUnknownFrom DropReason = "unknown_from"
	// ReasonUnknownTo: the transition's target local id matches no draft step.
	ReasonUnknownTo DropReason = "unknown_to"
)

// Drop records one draft row skipped by the reference policy.
type Drop struct {
	Entity  string         `json:"entity"` // "variable" or "transition"
	Index   int            `json:"index"`  // position in the draft slice
	LocalID domain.LocalID `json:"local_id"`
	Reason  DropReason     `json:"reason"`
}

func (d Drop) String() string {
	return fmt.Sprintf("%s #%d: %s (local id %d)", d.Entity, d.Index, d.Reason, d.LocalID)
}

// Plan is a normalized draft ready to be written.
type Plan struct {
	Template    domain.DraftTemplate
	Steps       []domain.DraftStep // insertion order: ascending sort hint, then draft order
	Variables   []domain.DraftVariable
	Transitions []domain.DraftTransition
	Dropped     []Drop
	// ClearedStart lists the steps whose start flag was removed.
	ClearedStart []domain.LocalID
}

// NewPlan validates and normalizes a draft without touching storage.
//
// Steps are ordered by sort hint (stable). When several steps are marked start,
// the first in that order keeps the flag. Variables and transitions whose local
// references match no step are dropped according to CheckReferences.
func NewPlan(d domain.Draft) (Plan, error) {
	if strings.TrimSpace(d.Template.Name) == "" {
		return Plan{}, fmt.Errorf("%w: template name is empty", domain.ErrInvalidDraft)
	}

	known := make(map[domain.LocalID]struct{}, len(d.Steps))
	for _, s := range d.Steps {
		if _, dup := known[s.LocalID]; dup {
			return Plan{}, fmt.Errorf("%w: duplicate local step id %d", domain.ErrInvalidDraft, s.LocalID)
		}
		known[s.LocalID] = struct{}{}
	}

	p := Plan{Template: d.Template}

	p.Steps = append([]domain.DraftStep(nil), d.Steps...)
	sort.SliceStable(p.Steps, func(i, j int) bool { return p.Steps[i].SortHint < p.Steps[j].SortHint })

	startSeen := false
	for i := range p.Steps {
		if !p.Steps[i].IsStart {
			continue
		}
		if startSeen {
			p.Steps[i].IsStart = false
			p.ClearedStart = append(p.ClearedStart, p.Steps[i].LocalID)
			continue
		}
		startSeen = true
	}

	for i, v := range d.Variables {
		if missing, reason, ok := CheckReferences(known, v); !ok {
			p.Dropped = append(p.Dropped, Drop{Entity: "variable", Index: i, LocalID: missing, Reason: reason})
			continue
		}
		p.Variables = append(p.Variables, v)
	}
	for i, t := range d.Transitions {
		if missing, reason, ok := CheckReferences(known, t); !ok {
			p.Dropped = append(p.Dropped, Drop{Entity: "transition", Index: i, LocalID: missing, Reason: reason})
			continue
		}
		p.Transitions = append(p.Transitions, t)
	}
	return p, nil
}

// CheckReferences is the reference policy: a variable or transition is kept
// only when every local id it references belongs to a draft step.
// It returns the first unresolved id and the reason when the row must be dropped.
func CheckReferences(known map[domain.LocalID]struct{}, row any) (domain.LocalID, DropReason, bool) {
	has := func(id domain.LocalID) bool {
		_, ok := known[id]
		return ok
	}
	switch r := row.(type) {
	case domain.DraftVariable:
		if !has(r.StepLocalID) {
			return r.StepLocalID, ReasonUnknownStep, false
		}
	case domain.DraftTransition:
		if !has(r.FromLocalID) {
			return r.FromLocalID, ReasonUnknownFrom, false
		}
		if !has(r.ToLocalID) {
			return r.ToLocalID, ReasonUnknownTo, false
		}
	}
	return 0, "", true
}

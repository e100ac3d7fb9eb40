package draft

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aretw0/shablon/pkg/condition"
	"github.com/aretw0/shablon/pkg/domain"
)

// Builder accumulates a draft graph.
// It is not safe for concurrent use; one builder belongs to one authoring session.
type Builder struct {
	template    domain.DraftTemplate
	steps       []*StepBuilder
	variables   []domain.DraftVariable
	transitions []domain.DraftTransition
	nextLocalID domain.LocalID
	err         error
}

// New creates a builder for a template owned by ownerID.
func New(ownerID int64, name string) *Builder {
	return &Builder{
		template:    domain.DraftTemplate{OwnerID: ownerID, Name: name},
		nextLocalID: 1,
	}
}

// Describe sets the template description.
func (b *Builder) Describe(description string) *Builder {
	b.template.Description = description
	return b
}

// Step appends a step with the next local id.
// Its sort hint defaults to ten times its position so later inserts can fit in between.
func (b *Builder) Step(title string) *StepBuilder {
	id := b.nextLocalID
	b.nextLocalID++
	sb := &StepBuilder{
		builder: b,
		step: domain.DraftStep{
			LocalID:  id,
			Title:    title,
			Kind:     domain.KindInfo,
			SortHint: int(id) * 10,
		},
	}
	b.steps = append(b.steps, sb)
	return sb
}

// Lookup returns the step builder for a local id.
func (b *Builder) Lookup(id domain.LocalID) (*StepBuilder, bool) {
	for _, sb := range b.steps {
		if sb.step.LocalID == id {
			return sb, true
		}
	}
	return nil, false
}

// MarkStart makes id the only start step of the draft.
// It reports false when no step has that id.
func (b *Builder) MarkStart(id domain.LocalID) bool {
	if _, ok := b.Lookup(id); !ok {
		return false
	}
	for _, sb := range b.steps {
		sb.step.IsStart = sb.step.LocalID == id
	}
	return true
}

// RemoveStep deletes a step together with its variables and every transition touching it.
func (b *Builder) RemoveStep(id domain.LocalID) bool {
	idx := slices.IndexFunc(b.steps, func(sb *StepBuilder) bool { return sb.step.LocalID == id })
	if idx < 0 {
		return false
	}
	b.steps = slices.Delete(b.steps, idx, idx+1)
	b.variables = slices.DeleteFunc(b.variables, func(v domain.DraftVariable) bool {
		return v.StepLocalID == id
	})
	b.transitions = slices.DeleteFunc(b.transitions, func(t domain.DraftTransition) bool {
		return t.FromLocalID == id || t.ToLocalID == id
	})
	return true
}

// Connect adds a transition between two local ids. An empty expr is unconditional.
// Endpoints are not checked here; the compiler drops unresolved references.
func (b *Builder) Connect(from, to domain.LocalID, label, expr string) *Builder {
	b.transitions = append(b.transitions, domain.DraftTransition{
		FromLocalID: from,
		ToLocalID:   to,
		Label:       label,
		Condition:   condition.EncodePayload(expr),
	})
	return b
}

// Err returns the first error recorded while building, such as options that
// cannot be encoded as JSON.
func (b *Builder) Err() error {
	return b.err
}

// Build is Draft that fails when the builder recorded an error.
func (b *Builder) Build() (domain.Draft, error) {
	if b.err != nil {
		return domain.Draft{}, b.err
	}
	return b.Draft(), nil
}

// Draft returns a snapshot of the accumulated graph.
func (b *Builder) Draft() domain.Draft {
	d := domain.Draft{
		Template:    b.template,
		Steps:       make([]domain.DraftStep, 0, len(b.steps)),
		Variables:   slices.Clone(b.variables),
		Transitions: slices.Clone(b.transitions),
	}
	for _, sb := range b.steps {
		d.Steps = append(d.Steps, sb.step)
	}
	return d
}

// StepBuilder configures one draft step.
type StepBuilder struct {
	builder *Builder
	step    domain.DraftStep
}

// ID returns the local id of the step.
func (s *StepBuilder) ID() domain.LocalID { return s.step.LocalID }

// Kind sets the presentation kind.
func (s *StepBuilder) Kind(kind domain.StepKind) *StepBuilder {
	s.step.Kind = kind
	return s
}

// Content sets the body text shown to the user.
func (s *StepBuilder) Content(content string) *StepBuilder {
	s.step.Content = content
	return s
}

// Message sets the step message. Summary steps use it as their template.
func (s *StepBuilder) Message(message string) *StepBuilder {
	s.step.Message = message
	return s
}

// SortHint overrides the authoring order.
func (s *StepBuilder) SortHint(hint int) *StepBuilder {
	s.step.SortHint = hint
	return s
}

// Start marks the step as the only start step.
func (s *StepBuilder) Start() *StepBuilder {
	s.builder.MarkStart(s.step.LocalID)
	return s
}

// Terminal marks the step as an end of the scenario.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.IsTerminal = true
	return s
}

// Var declares a variable on the step. options may be nil. Options that do not
// encode as JSON leave the variable out and are reported by Err and Build.
func (s *StepBuilder) Var(name, typ, defaultValue string, options map[string]any) *StepBuilder {
	v := domain.DraftVariable{
		StepLocalID:  s.step.LocalID,
		Name:         name,
		Type:         typ,
		DefaultValue: defaultValue,
	}
	if len(options) > 0 {
		raw, err := json.Marshal(options)
		if err != nil {
			if s.builder.err == nil {
				s.builder.err = fmt.Errorf("step %q variable %q: encode options: %w", s.step.Title, name, err)
			}
			return s
		}
		v.Options = raw
	}
	s.builder.variables = append(s.builder.variables, v)
	return s
}

// Go adds an unconditional transition to next.
func (s *StepBuilder) Go(next *StepBuilder, label string) *StepBuilder {
	s.builder.Connect(s.step.LocalID, next.step.LocalID, label, "")
	return s
}

// When adds a conditional transition to next.
func (s *StepBuilder) When(expr string, next *StepBuilder, label string) *StepBuilder {
	s.builder.Connect(s.step.LocalID, next.step.LocalID, label, expr)
	return s
}

// Package memory provides an in-memory graph store.
//
// It enforces the same constraints as the relational schema (foreign keys,
// unique template names per owner, no self-loops) so it can stand in for
// SQLite in tests and embedded use.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
)

var (
	errUnique     = errors.New("UNIQUE constraint failed: template.owner_id, template.name")
	errForeignKey = errors.New("FOREIGN KEY constraint failed")
	errSelfLoop   = errors.New("CHECK constraint failed: from_step_id <> to_step_id")
)

type graph struct {
	seq         int64
	templates   map[int64]domain.Template
	steps       map[int64]domain.Step
	variables   map[int64]domain.Variable
	transitions map[int64]domain.Transition
}

func newGraph() *graph {
	return &graph{
		templates:   make(map[int64]domain.Template),
		steps:       make(map[int64]domain.Step),
		variables:   make(map[int64]domain.Variable),
		transitions: make(map[int64]domain.Transition),
	}
}

// clone copies the maps. Values are plain structs, except Variable.Options
// which is never mutated in place.
func (g *graph) clone() *graph {
	c := newGraph()
	c.seq = g.seq
	for k, v := range g.templates {
		c.templates[k] = v
	}
	for k, v := range g.steps {
		c.steps[k] = v
	}
	for k, v := range g.variables {
		c.variables[k] = v
	}
	for k, v := range g.transitions {
		c.transitions[k] = v
	}
	return c
}

func (g *graph) nextID() int64 {
	g.seq++
	return g.seq
}

// Store implements ports.GraphStore in memory.
// Safe for concurrent use; units of work are serialized.
type Store struct {
	mu  sync.RWMutex
	g   *graph
	now func() time.Time
}

var _ ports.GraphStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{g: newGraph(), now: time.Now}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Atomic runs fn against a staged copy of the graph and publishes it only if fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(tx ports.GraphTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	staged := s.g.clone()
	if err := fn(&memTx{g: staged, now: s.now().UTC()}); err != nil {
		return err
	}
	s.g = staged
	return nil
}

type memTx struct {
	g   *graph
	now time.Time
}

func (tx *memTx) InsertTemplate(_ context.Context, t domain.Template) (int64, error) {
	for _, existing := range tx.g.templates {
		if existing.OwnerID == t.OwnerID && existing.Name == t.Name {
			return 0, &domain.IntegrityError{Op: "insert template", Err: errUnique}
		}
	}
	t.ID = tx.g.nextID()
	t.CreatedAt, t.UpdatedAt = tx.now, tx.now
	tx.g.templates[t.ID] = t
	return t.ID, nil
}

func (tx *memTx) InsertStep(_ context.Context, st domain.Step) (int64, error) {
	if _, ok := tx.g.templates[st.TemplateID]; !ok {
		return 0, &domain.IntegrityError{Op: "insert step", Err: errForeignKey}
	}
	st.ID = tx.g.nextID()
	st.CreatedAt, st.UpdatedAt = tx.now, tx.now
	tx.g.steps[st.ID] = st
	return st.ID, nil
}

func (tx *memTx) InsertVariable(_ context.Context, v domain.Variable) (int64, error) {
	if _, ok := tx.g.steps[v.StepID]; !ok {
		return 0, &domain.IntegrityError{Op: "insert variable", Err: errForeignKey}
	}
	v.ID = tx.g.nextID()
	tx.g.variables[v.ID] = v
	return v.ID, nil
}

func (tx *memTx) InsertTransition(_ context.Context, t domain.Transition) (int64, error) {
	_, fromOK := tx.g.steps[t.FromStepID]
	_, toOK := tx.g.steps[t.ToStepID]
	if !fromOK || !toOK {
		return 0, &domain.IntegrityError{Op: "insert transition", Err: errForeignKey}
	}
	if t.FromStepID == t.ToStepID {
		return 0, &domain.IntegrityError{Op: "insert transition", Err: errSelfLoop}
	}
	t.ID = tx.g.nextID()
	tx.g.transitions[t.ID] = t
	return t.ID, nil
}

// Template returns one template by id.
func (s *Store) Template(_ context.Context, id int64) (domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.g.templates[id]
	if !ok {
		return domain.Template{}, domain.NewNotFound("template", id)
	}
	return t, nil
}

// Templates lists the templates of an owner, most recently updated first.
func (s *Store) Templates(_ context.Context, ownerID int64) ([]domain.TemplateSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, st := range s.g.steps {
		counts[st.TemplateID]++
	}

	var out []domain.TemplateSummary
	for _, t := range s.g.templates {
		if t.OwnerID == ownerID {
			out = append(out, domain.TemplateSummary{Template: t, StepCount: counts[t.ID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// StartStep returns the start step of a template.
func (s *Store) StartStep(ctx context.Context, templateID int64) (domain.Step, error) {
	steps, err := s.Steps(ctx, templateID)
	if err != nil {
		return domain.Step{}, err
	}
	for _, st := range steps {
		if st.IsStart {
			return st, nil
		}
	}
	return domain.Step{}, domain.NewNotFound("start step of template", templateID)
}

// Step returns one step by id.
func (s *Store) Step(_ context.Context, id int64) (domain.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.g.steps[id]
	if !ok {
		return domain.Step{}, domain.NewNotFound("step", id)
	}
	return st, nil
}

// Steps returns the steps of a template ordered by sort hint.
func (s *Store) Steps(_ context.Context, templateID int64) ([]domain.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Step
	for _, st := range s.g.steps {
		if st.TemplateID == templateID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortHint != out[j].SortHint {
			return out[i].SortHint < out[j].SortHint
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Variables returns the variables of a step in insertion order.
func (s *Store) Variables(_ context.Context, stepID int64) ([]domain.Variable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Variable
	for _, v := range s.g.variables {
		if v.StepID == stepID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// TransitionsFrom returns the outgoing transitions of a step in insertion order.
func (s *Store) TransitionsFrom(_ context.Context, stepID int64) ([]domain.Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.g.filterTransitions(func(t domain.Transition) bool { return t.FromStepID == stepID }), nil
}

// Transitions returns every transition of a template in insertion order.
func (s *Store) Transitions(_ context.Context, templateID int64) ([]domain.Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.g.filterTransitions(func(t domain.Transition) bool {
		return s.g.steps[t.FromStepID].TemplateID == templateID
	}), nil
}

func (g *graph) filterTransitions(keep func(domain.Transition) bool) []domain.Transition {
	var out []domain.Transition
	for _, t := range g.transitions {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateTemplate edits the name and description of a template.
func (s *Store) UpdateTemplate(_ context.Context, id int64, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.g.templates[id]
	if !ok {
		return domain.NewNotFound("template", id)
	}
	for _, existing := range s.g.templates {
		if existing.ID != id && existing.OwnerID == t.OwnerID && existing.Name == name {
			return &domain.IntegrityError{Op: "update template", Err: errUnique}
		}
	}
	t.Name, t.Description, t.UpdatedAt = name, description, s.now().UTC()
	s.g.templates[id] = t
	return nil
}

// UpdateStep edits the texts of a step and touches its template.
func (s *Store) UpdateStep(_ context.Context, id int64, title, content, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.g.steps[id]
	if !ok {
		return domain.NewNotFound("step", id)
	}
	now := s.now().UTC()
	st.Title, st.Content, st.Message, st.UpdatedAt = title, content, message, now
	s.g.steps[id] = st

	t := s.g.templates[st.TemplateID]
	t.UpdatedAt = now
	s.g.templates[st.TemplateID] = t
	return nil
}

// DeleteTemplate removes a template and everything it owns.
func (s *Store) DeleteTemplate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.g.templates[id]; !ok {
		return domain.NewNotFound("template", id)
	}
	delete(s.g.templates, id)

	for stepID, st := range s.g.steps {
		if st.TemplateID != id {
			continue
		}
		delete(s.g.steps, stepID)
		for vid, v := range s.g.variables {
			if v.StepID == stepID {
				delete(s.g.variables, vid)
			}
		}
		for tid, t := range s.g.transitions {
			if t.FromStepID == stepID || t.ToStepID == stepID {
				delete(s.g.transitions, tid)
			}
		}
	}
	return nil
}

// String is used by debug logs.
func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memory.Store{templates: %d, steps: %d, transitions: %d}",
		len(s.g.templates), len(s.g.steps), len(s.g.transitions))
}

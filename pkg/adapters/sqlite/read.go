package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/shablon/pkg/domain"
)

const stepColumns = `id, template_id, title, content, message, kind, is_start, is_terminal, sort_hint, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanStep(row scanner) (domain.Step, error) {
	var (
		st                   domain.Step
		kind                 string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&st.ID, &st.TemplateID, &st.Title, &st.Content, &st.Message, &kind,
		&st.IsStart, &st.IsTerminal, &st.SortHint, &createdAt, &updatedAt); err != nil {
		return domain.Step{}, err
	}
	st.Kind = domain.StepKind(kind)
	st.CreatedAt = fromMillis(createdAt)
	st.UpdatedAt = fromMillis(updatedAt)
	return st, nil
}

func scanTransition(row scanner) (domain.Transition, error) {
	var (
		tr   domain.Transition
		cond sql.NullString
	)
	if err := row.Scan(&tr.ID, &tr.FromStepID, &tr.ToStepID, &tr.Label, &cond); err != nil {
		return domain.Transition{}, err
	}
	tr.Condition = cond.String
	return tr, nil
}

// Template returns one template by id.
func (s *Store) Template(ctx context.Context, id int64) (domain.Template, error) {
	var (
		t                    domain.Template
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at FROM template WHERE id = ?`, id,
	).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Template{}, domain.NewNotFound("template", id)
	}
	if err != nil {
		return domain.Template{}, fmt.Errorf("get template: %w", err)
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

// Templates lists the templates of an owner with their step counts.
func (s *Store) Templates(ctx context.Context, ownerID int64) ([]domain.TemplateSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.id, t.owner_id, t.name, t.description, t.created_at, t.updated_at, COUNT(s.id)
FROM template t
LEFT JOIN step s ON s.template_id = t.id
WHERE t.owner_id = ?
GROUP BY t.id
ORDER BY t.updated_at DESC, t.id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.TemplateSummary
	for rows.Next() {
		var (
			ts                   domain.TemplateSummary
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&ts.ID, &ts.OwnerID, &ts.Name, &ts.Description, &createdAt, &updatedAt, &ts.StepCount); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		ts.CreatedAt = fromMillis(createdAt)
		ts.UpdatedAt = fromMillis(updatedAt)
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// StartStep returns the start step of a template.
func (s *Store) StartStep(ctx context.Context, templateID int64) (domain.Step, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM step WHERE template_id = ? AND is_start = 1 ORDER BY sort_hint, id LIMIT 1`,
		templateID)
	st, err := scanStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Step{}, domain.NewNotFound("start step of template", templateID)
	}
	if err != nil {
		return domain.Step{}, fmt.Errorf("get start step: %w", err)
	}
	return st, nil
}

// Step returns one step by id.
func (s *Store) Step(ctx context.Context, id int64) (domain.Step, error) {
	st, err := scanStep(s.db.QueryRowContext(ctx, `SELECT `+stepColumns+` FROM step WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Step{}, domain.NewNotFound("step", id)
	}
	if err != nil {
		return domain.Step{}, fmt.Errorf("get step: %w", err)
	}
	return st, nil
}

// Steps returns the steps of a template ordered by sort hint.
func (s *Store) Steps(ctx context.Context, templateID int64) ([]domain.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM step WHERE template_id = ? ORDER BY sort_hint, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []domain.Step
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return out, nil
}

// Variables returns the variables of a step in insertion order.
func (s *Store) Variables(ctx context.Context, stepID int64) ([]domain.Variable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, step_id, name, type, default_value, options_json FROM variable WHERE step_id = ? ORDER BY id`, stepID)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	defer rows.Close()

	var out []domain.Variable
	for rows.Next() {
		var (
			v            domain.Variable
			def, options sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.StepID, &v.Name, &v.Type, &def, &options); err != nil {
			return nil, fmt.Errorf("scan variable: %w", err)
		}
		v.DefaultValue = def.String
		if options.Valid && options.String != "" {
			v.Options = json.RawMessage(options.String)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	return out, nil
}

// TransitionsFrom returns the outgoing transitions of a step in insertion order.
func (s *Store) TransitionsFrom(ctx context.Context, stepID int64) ([]domain.Transition, error) {
	return s.queryTransitions(ctx,
		`SELECT id, from_step_id, to_step_id, label, condition_json FROM transition WHERE from_step_id = ? ORDER BY id`, stepID)
}

// Transitions returns every transition of a template in insertion order.
func (s *Store) Transitions(ctx context.Context, templateID int64) ([]domain.Transition, error) {
	return s.queryTransitions(ctx, `
SELECT tr.id, tr.from_step_id, tr.to_step_id, tr.label, tr.condition_json
FROM transition tr
JOIN step s ON s.id = tr.from_step_id
WHERE s.template_id = ?
ORDER BY tr.id`, templateID)
}

func (s *Store) queryTransitions(ctx context.Context, query string, arg int64) ([]domain.Transition, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transition
	for rows.Next() {
		tr, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	return out, nil
}

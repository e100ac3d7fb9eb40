package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
)

// Atomic runs fn inside one IMMEDIATE transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx ports.GraphTx) error) error {
	return s.atomic(ctx, func(g *graphTx) error { return fn(g) })
}

func (s *Store) atomic(ctx context.Context, fn func(g *graphTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&graphTx{tx: sqlTx, now: toMillis(s.now())}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return wrap("commit", err)
	}
	return nil
}

// graphTx inserts rows through one open transaction.
// Every row written in the same unit of work shares one timestamp.
type graphTx struct {
	tx  *sql.Tx
	now int64
}

func (g *graphTx) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := g.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	return id, nil
}

func (g *graphTx) InsertTemplate(ctx context.Context, t domain.Template) (int64, error) {
	return g.insert(ctx, "insert template",
		`INSERT INTO template (owner_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.OwnerID, t.Name, t.Description, g.now, g.now)
}

func (g *graphTx) InsertStep(ctx context.Context, st domain.Step) (int64, error) {
	return g.insert(ctx, "insert step",
		`INSERT INTO step (template_id, title, content, message, kind, is_start, is_terminal, sort_hint, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.TemplateID, st.Title, st.Content, st.Message, string(st.Kind),
		boolInt(st.IsStart), boolInt(st.IsTerminal), st.SortHint, g.now, g.now)
}

func (g *graphTx) InsertVariable(ctx context.Context, v domain.Variable) (int64, error) {
	return g.insert(ctx, "insert variable",
		`INSERT INTO variable (step_id, name, type, default_value, options_json) VALUES (?, ?, ?, ?, ?)`,
		v.StepID, v.Name, v.Type, nullString(v.DefaultValue), nullString(string(v.Options)))
}

func (g *graphTx) InsertTransition(ctx context.Context, t domain.Transition) (int64, error) {
	return g.insert(ctx, "insert transition",
		`INSERT INTO transition (from_step_id, to_step_id, label, condition_json) VALUES (?, ?, ?, ?)`,
		t.FromStepID, t.ToStepID, t.Label, nullString(t.Condition))
}

// UpdateTemplate edits the name and description of a template.
func (s *Store) UpdateTemplate(ctx context.Context, id int64, name, description string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE template SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, toMillis(s.now()), id)
	if err != nil {
		return wrap("update template", err)
	}
	return expectRow(res, "template", id)
}

// UpdateStep edits the texts of a step and touches its template.
func (s *Store) UpdateStep(ctx context.Context, id int64, title, content, message string) error {
	return s.atomic(ctx, func(g *graphTx) error {
		res, err := g.tx.ExecContext(ctx,
			`UPDATE step SET title = ?, content = ?, message = ?, updated_at = ? WHERE id = ?`,
			title, content, message, g.now, id)
		if err != nil {
			return wrap("update step", err)
		}
		if err := expectRow(res, "step", id); err != nil {
			return err
		}
		_, err = g.tx.ExecContext(ctx,
			`UPDATE template SET updated_at = ? WHERE id = (SELECT template_id FROM step WHERE id = ?)`,
			g.now, id)
		if err != nil {
			return wrap("touch template", err)
		}
		return nil
	})
}

// DeleteTemplate removes a template; foreign keys cascade to steps, variables and transitions.
func (s *Store) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM template WHERE id = ?`, id)
	if err != nil {
		return wrap("delete template", err)
	}
	return expectRow(res, "template", id)
}

func expectRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", entity, id, err)
	}
	if n == 0 {
		return domain.NewNotFound(entity, id)
	}
	return nil
}

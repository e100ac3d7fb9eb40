package tests

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. It is called once per sub-test.
type Factory func(t *testing.T) ports.GraphStore

// fixture is the graph inserted by seedGraph: A(start) -> B -> C(terminal), plus A -> C.
type fixture struct {
	templateID int64
	a, b, c    int64
	ab, bc, ac int64
}

func seedGraph(t *testing.T, store ports.GraphStore, owner int64, name string) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	err := store.Atomic(ctx, func(tx ports.GraphTx) error {
		var err error
		if f.templateID, err = tx.InsertTemplate(ctx, domain.Template{OwnerID: owner, Name: name, Description: "fixture"}); err != nil {
			return err
		}
		// Inserted out of sort order on purpose.
		if f.c, err = tx.InsertStep(ctx, domain.Step{TemplateID: f.templateID, Title: "C", Kind: domain.KindSummary, IsTerminal: true, SortHint: 30}); err != nil {
			return err
		}
		if f.a, err = tx.InsertStep(ctx, domain.Step{TemplateID: f.templateID, Title: "A", Kind: domain.KindQuestion, IsStart: true, SortHint: 10}); err != nil {
			return err
		}
		if f.b, err = tx.InsertStep(ctx, domain.Step{TemplateID: f.templateID, Title: "B", Content: "body", Message: "msg", Kind: domain.KindForm, SortHint: 20}); err != nil {
			return err
		}
		if _, err = tx.InsertVariable(ctx, domain.Variable{StepID: f.b, Name: "date", Type: domain.TypeDate, Options: json.RawMessage(`{"minuteInterval":15}`)}); err != nil {
			return err
		}
		if _, err = tx.InsertVariable(ctx, domain.Variable{StepID: f.b, Name: "hour", Type: domain.TypeInt, DefaultValue: "9"}); err != nil {
			return err
		}
		if f.ab, err = tx.InsertTransition(ctx, domain.Transition{FromStepID: f.a, ToStepID: f.b, Label: "yes", Condition: `{"if":"ok==true"}`}); err != nil {
			return err
		}
		if f.ac, err = tx.InsertTransition(ctx, domain.Transition{FromStepID: f.a, ToStepID: f.c}); err != nil {
			return err
		}
		f.bc, err = tx.InsertTransition(ctx, domain.Transition{FromStepID: f.b, ToStepID: f.c})
		return err
	})
	require.NoError(t, err)
	return f
}

// RunGraphStoreContract verifies that a backend complies with ports.GraphStore.
func RunGraphStoreContract(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("Reads", func(t *testing.T) {
		store := newStore(t)
		f := seedGraph(t, store, 1, "reads")

		tpl, err := store.Template(ctx, f.templateID)
		require.NoError(t, err)
		assert.Equal(t, "reads", tpl.Name)
		assert.Equal(t, int64(1), tpl.OwnerID)
		assert.Equal(t, "fixture", tpl.Description)
		assert.False(t, tpl.CreatedAt.IsZero())

		start, err := store.StartStep(ctx, f.templateID)
		require.NoError(t, err)
		assert.Equal(t, f.a, start.ID)
		assert.True(t, start.IsStart)

		b, err := store.Step(ctx, f.b)
		require.NoError(t, err)
		assert.Equal(t, f.templateID, b.TemplateID)
		assert.Equal(t, "B", b.Title)
		assert.Equal(t, "body", b.Content)
		assert.Equal(t, "msg", b.Message)
		assert.Equal(t, domain.KindForm, b.Kind)
		assert.Equal(t, 20, b.SortHint)

		steps, err := store.Steps(ctx, f.templateID)
		require.NoError(t, err)
		require.Len(t, steps, 3)
		assert.Equal(t, []int64{f.a, f.b, f.c}, []int64{steps[0].ID, steps[1].ID, steps[2].ID}, "ordered by sort hint")

		vars, err := store.Variables(ctx, f.b)
		require.NoError(t, err)
		require.Len(t, vars, 2)
		assert.Equal(t, "date", vars[0].Name)
		assert.JSONEq(t, `{"minuteInterval":15}`, string(vars[0].Options))
		assert.Equal(t, "hour", vars[1].Name)
		assert.Equal(t, "9", vars[1].DefaultValue)
		assert.Empty(t, vars[1].Options)

		out, err := store.TransitionsFrom(ctx, f.a)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, f.ab, out[0].ID, "insertion order")
		assert.Equal(t, "yes", out[0].Label)
		assert.Equal(t, `{"if":"ok==true"}`, out[0].Condition)
		assert.Equal(t, f.ac, out[1].ID)
		assert.Empty(t, out[1].Condition)

		all, err := store.Transitions(ctx, f.templateID)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		none, err := store.TransitionsFrom(ctx, f.c)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Templates", func(t *testing.T) {
		store := newStore(t)
		first := seedGraph(t, store, 1, "first")
		second := seedGraph(t, store, 1, "second")
		seedGraph(t, store, 2, "first")

		list, err := store.Templates(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.templateID, list[0].ID, "most recent first")
		assert.Equal(t, first.templateID, list[1].ID)
		assert.Equal(t, 3, list[0].StepCount)

		empty, err := store.Templates(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Template(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.Step(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.StartStep(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, store.DeleteTemplate(ctx, 999), domain.ErrNotFound)
		assert.ErrorIs(t, store.UpdateTemplate(ctx, 999, "x", ""), domain.ErrNotFound)
		assert.ErrorIs(t, store.UpdateStep(ctx, 999, "x", "", ""), domain.ErrNotFound)

		var nf *domain.NotFoundError
		_, err = store.Step(ctx, 999)
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, int64(999), nf.ID)
	})

	t.Run("StartStep_Missing", func(t *testing.T) {
		store := newStore(t)
		var templateID int64
		require.NoError(t, store.Atomic(ctx, func(tx ports.GraphTx) error {
			var err error
			templateID, err = tx.InsertTemplate(ctx, domain.Template{OwnerID: 1, Name: "no start"})
			if err != nil {
				return err
			}
			_, err = tx.InsertStep(ctx, domain.Step{TemplateID: templateID, Title: "lonely"})
			return err
		}))

		_, err := store.StartStep(ctx, templateID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Atomic_RollbackOnError", func(t *testing.T) {
		store := newStore(t)
		boom := errors.New("boom")

		err := store.Atomic(ctx, func(tx ports.GraphTx) error {
			id, err := tx.InsertTemplate(ctx, domain.Template{OwnerID: 1, Name: "doomed"})
			if err != nil {
				return err
			}
			if _, err := tx.InsertStep(ctx, domain.Step{TemplateID: id, Title: "S", IsStart: true}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		list, err := store.Templates(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Integrity_SelfLoop", func(t *testing.T) {
		store := newStore(t)
		err := store.Atomic(ctx, func(tx ports.GraphTx) error {
			id, err := tx.InsertTemplate(ctx, domain.Template{OwnerID: 1, Name: "loop"})
			if err != nil {
				return err
			}
			s, err := tx.InsertStep(ctx, domain.Step{TemplateID: id, Title: "S"})
			if err != nil {
				return err
			}
			_, err = tx.InsertTransition(ctx, domain.Transition{FromStepID: s, ToStepID: s})
			return err
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		var ie *domain.IntegrityError
		assert.ErrorAs(t, err, &ie)

		list, err := store.Templates(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list, "nothing of the failed unit of work is visible")
	})

	t.Run("Integrity_DuplicateName", func(t *testing.T) {
		store := newStore(t)
		seedGraph(t, store, 1, "dup")

		err := store.Atomic(ctx, func(tx ports.GraphTx) error {
			_, err := tx.InsertTemplate(ctx, domain.Template{OwnerID: 1, Name: "dup"})
			return err
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		err = store.Atomic(ctx, func(tx ports.GraphTx) error {
			_, err := tx.InsertTemplate(ctx, domain.Template{OwnerID: 2, Name: "dup"})
			return err
		})
		assert.NoError(t, err, "names are unique per owner only")
	})

	t.Run("Integrity_DanglingReference", func(t *testing.T) {
		store := newStore(t)
		err := store.Atomic(ctx, func(tx ports.GraphTx) error {
			_, err := tx.InsertStep(ctx, domain.Step{TemplateID: 12345, Title: "orphan"})
			return err
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		f := seedGraph(t, store, 1, "refs")
		err = store.Atomic(ctx, func(tx ports.GraphTx) error {
			_, err := tx.InsertTransition(ctx, domain.Transition{FromStepID: f.a, ToStepID: 12345})
			return err
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		err = store.Atomic(ctx, func(tx ports.GraphTx) error {
			_, err := tx.InsertVariable(ctx, domain.Variable{StepID: 12345, Name: "x", Type: domain.TypeString})
			return err
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		out, err := store.TransitionsFrom(ctx, f.a)
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("DeleteTemplate_Cascades", func(t *testing.T) {
		store := newStore(t)
		f := seedGraph(t, store, 1, "cascade")
		keep := seedGraph(t, store, 1, "keep")

		require.NoError(t, store.DeleteTemplate(ctx, f.templateID))

		_, err := store.Template(ctx, f.templateID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.Step(ctx, f.b)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		vars, err := store.Variables(ctx, f.b)
		require.NoError(t, err)
		assert.Empty(t, vars)
		out, err := store.TransitionsFrom(ctx, f.a)
		require.NoError(t, err)
		assert.Empty(t, out)

		steps, err := store.Steps(ctx, keep.templateID)
		require.NoError(t, err)
		assert.Len(t, steps, 3)
	})

	t.Run("Update", func(t *testing.T) {
		store := newStore(t)
		f := seedGraph(t, store, 1, "edit")
		other := seedGraph(t, store, 1, "taken")

		require.NoError(t, store.UpdateTemplate(ctx, f.templateID, "edited", "new description"))
		tpl, err := store.Template(ctx, f.templateID)
		require.NoError(t, err)
		assert.Equal(t, "edited", tpl.Name)
		assert.Equal(t, "new description", tpl.Description)
		assert.False(t, tpl.UpdatedAt.Before(tpl.CreatedAt))

		err = store.UpdateTemplate(ctx, other.templateID, "edited", "")
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		require.NoError(t, store.UpdateStep(ctx, f.b, "B2", "c2", "m2"))
		b, err := store.Step(ctx, f.b)
		require.NoError(t, err)
		assert.Equal(t, "B2", b.Title)
		assert.Equal(t, "c2", b.Content)
		assert.Equal(t, "m2", b.Message)
		assert.Equal(t, domain.KindForm, b.Kind, "only texts change")
	})
}

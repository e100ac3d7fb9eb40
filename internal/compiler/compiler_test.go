package compiler_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/shablon/internal/compiler"
	"github.com/aretw0/shablon/pkg/adapters/memory"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/aretw0/shablon/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	for _, ids := range [][3]domain.LocalID{{1, 2, 3}, {42, 7, 1000}} {
		d := domain.Draft{
			Template: domain.DraftTemplate{OwnerID: 1, Name: fmt.Sprintf("chain %d", ids[0])},
			Steps: []domain.DraftStep{
				{LocalID: ids[0], Title: "one", IsStart: true, SortHint: 1},
				{LocalID: ids[1], Title: "two", SortHint: 2},
				{LocalID: ids[2], Title: "three", IsTerminal: true, SortHint: 3},
			},
			Transitions: []domain.DraftTransition{
				{FromLocalID: ids[0], ToLocalID: ids[1]},
				{FromLocalID: ids[1], ToLocalID: ids[2]},
			},
		}

		rep, err := compiler.New(store).Compile(ctx, d)
		require.NoError(t, err)
		require.Len(t, rep.StepIDs, 3)
		assert.Equal(t, 2, rep.Transitions)

		start, err := store.StartStep(ctx, rep.TemplateID)
		require.NoError(t, err)

		var titles []string
		cur := start
		for edges := 0; ; edges++ {
			titles = append(titles, cur.Title)
			out, err := store.TransitionsFrom(ctx, cur.ID)
			require.NoError(t, err)
			if len(out) == 0 {
				assert.Equal(t, 2, edges)
				break
			}
			cur, err = store.Step(ctx, out[0].ToStepID)
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"one", "two", "three"}, titles)
	}
}

func TestCompile_DropsUnresolvedVariable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	b := draft.New(1, "drops")
	s := b.Step("only").Start().Terminal().Var("kept", domain.TypeString, "", nil)
	d := b.Draft()
	d.Variables = append(d.Variables, domain.DraftVariable{StepLocalID: 99, Name: "ghost", Type: domain.TypeInt})

	rep, err := compiler.New(store).Compile(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Variables)
	require.Len(t, rep.Dropped, 1)
	assert.Equal(t, compiler.ReasonUnknownStep, rep.Dropped[0].Reason)

	vars, err := store.Variables(ctx, rep.StepIDs[s.ID()])
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "kept", vars[0].Name)
}

func TestCompile_SelfLoopRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	b := draft.New(1, "loop")
	a := b.Step("a").Start()
	a.Go(a, "again")

	_, err := compiler.New(store).Compile(ctx, b.Draft())
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

	list, err := store.Templates(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list, "no partial graph is visible")
}

func TestCompile_DuplicateName(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := compiler.New(store)

	_, err := c.Compile(ctx, draft.Consultation(1))
	require.NoError(t, err)
	_, err = c.Compile(ctx, draft.Consultation(1))
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	_, err = c.Compile(ctx, draft.Consultation(2))
	assert.NoError(t, err)
}

func TestCompile_InvalidDraftWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := compiler.New(store).Compile(ctx, domain.Draft{Template: domain.DraftTemplate{OwnerID: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidDraft)

	list, err := store.Templates(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCompile_Hooks(t *testing.T) {
	ctx := context.Background()
	var events []*domain.CompileEvent
	c := compiler.New(memory.NewStore(), compiler.WithLifecycleHooks(domain.LifecycleHooks{
		OnCompile: func(_ context.Context, e *domain.CompileEvent) { events = append(events, e) },
	}))

	rep, err := c.Compile(ctx, draft.Consultation(1))
	require.NoError(t, err)
	_, err = c.Compile(ctx, draft.Consultation(1))
	require.Error(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, rep.TemplateID, events[0].TemplateID)
	assert.Equal(t, 9, events[0].Steps)
	assert.Equal(t, 10, events[0].Transitions)
	assert.NoError(t, events[0].Err)
	assert.ErrorIs(t, events[1].Err, domain.ErrIntegrityViolation)
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestCompile_LocksPerOwner(t *testing.T) {
	locker := &recordingLocker{}
	c := compiler.New(memory.NewStore(), compiler.WithLocker(locker, time.Second))

	_, err := c.Compile(context.Background(), draft.Consultation(5))
	require.NoError(t, err)

	assert.Equal(t, []string{"compile:5"}, locker.keys)
	assert.Equal(t, 1, locker.released)
}

package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/shablon/pkg/adapters/memory"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
	"github.com/aretw0/shablon/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	tests.RunGraphStoreContract(t, func(t *testing.T) ports.GraphStore {
		return memory.NewStore()
	})
}

func TestStore_AtomicHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.NewStore()
	called := false
	err := store.Atomic(ctx, func(tx ports.GraphTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_String(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Atomic(context.Background(), func(tx ports.GraphTx) error {
		_, err := tx.InsertTemplate(context.Background(), domain.Template{OwnerID: 1, Name: "x"})
		return err
	}))
	assert.Equal(t, "memory.Store{templates: 1, steps: 0, transitions: 0}", store.String())
}

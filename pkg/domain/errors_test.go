package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/shablon/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrors_Taxonomy(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		err := fmt.Errorf("load: %w", domain.NewNotFound("step", 7))
		assert.True(t, domain.IsNotFound(err))
		assert.False(t, domain.IsRoutingFailure(err))

		var nf *domain.NotFoundError
		assert.True(t, errors.As(err, &nf))
		assert.Equal(t, int64(7), nf.ID)
		assert.Equal(t, "step 7: not found", nf.Error())
	})

	t.Run("RoutingFailure", func(t *testing.T) {
		err := &domain.RoutingError{StepID: 20, TemplateID: 1, Considered: 2}
		assert.True(t, domain.IsRoutingFailure(err))
		assert.Contains(t, err.Error(), "step 20")
	})

	t.Run("IntegrityViolation", func(t *testing.T) {
		cause := errors.New("CHECK constraint failed")
		err := fmt.Errorf("compile: %w", &domain.IntegrityError{Op: "insert transition", Err: cause})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
		assert.ErrorIs(t, err, cause)
	})
}

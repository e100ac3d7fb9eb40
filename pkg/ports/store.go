package ports

import (
	"context"

	"github.com/aretw0/shablon/pkg/domain"
)

// GraphReader is the read side of the graph store. Implementations hold no business logic.
type GraphReader interface {
	// Template returns a template by id or a *domain.NotFoundError.
	Template(ctx context.Context, id int64) (domain.Template, error)

	// Templates lists the templates of an owner with their step counts,
	// most recently updated first.
	Templates(ctx context.Context, ownerID int64) ([]domain.TemplateSummary, error)

	// StartStep returns the start step of a template.
	// Returns a *domain.NotFoundError when the template has none.
	StartStep(ctx context.Context, templateID int64) (domain.Step, error)

	// Step returns a step by id or a *domain.NotFoundError.
	Step(ctx context.Context, id int64) (domain.Step, error)

	// Steps returns the steps of a template ordered by sort hint.
	Steps(ctx context.Context, templateID int64) ([]domain.Step, error)

	// Variables returns the variables declared by a step in insertion order.
	Variables(ctx context.Context, stepID int64) ([]domain.Variable, error)

	// TransitionsFrom returns the outgoing transitions of a step in insertion order.
	// The order is significant: the resolver picks the first match.
	TransitionsFrom(ctx context.Context, stepID int64) ([]domain.Transition, error)

	// Transitions returns every transition of a template in insertion order.
	Transitions(ctx context.Context, templateID int64) ([]domain.Transition, error)
}

// GraphTx is the set of inserts available inside a unit of work.
// Each insert returns the storage-assigned identifier.
type GraphTx interface {
	InsertTemplate(ctx context.Context, t domain.Template) (int64, error)
	InsertStep(ctx context.Context, s domain.Step) (int64, error)
	InsertVariable(ctx context.Context, v domain.Variable) (int64, error)
	InsertTransition(ctx context.Context, t domain.Transition) (int64, error)
}

// GraphWriter is the write side of the graph store.
type GraphWriter interface {
	// Atomic runs fn inside one unit of work. If fn returns an error, or a storage
	// constraint fails, nothing written by fn is observable afterwards.
	// Constraint failures are reported as *domain.IntegrityError.
	Atomic(ctx context.Context, fn func(tx GraphTx) error) error

	// UpdateTemplate edits the metadata of a template.
	UpdateTemplate(ctx context.Context, id int64, name, description string) error

	// UpdateStep edits the texts of a step.
	UpdateStep(ctx context.Context, id int64, title, content, message string) error

	// DeleteTemplate removes a template and, transitively, everything it owns.
	DeleteTemplate(ctx context.Context, id int64) error
}

// GraphStore is a complete storage backend.
type GraphStore interface {
	GraphReader
	GraphWriter
	Close() error
}

package cli

import (
	"errors"

	"github.com/aretw0/shablon/internal/validator"
	"github.com/aretw0/shablon/pkg/domain"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1 // routing failure, unfinished run or invalid graph
	ExitUsage   = 2 // any other command error
)

// ErrRunIncomplete reports a run abandoned before a terminal step.
var ErrRunIncomplete = errors.New("run did not reach a terminal step")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case domain.IsRoutingFailure(err), errors.Is(err, ErrRunIncomplete), errors.Is(err, validator.ErrInvalidGraph):
		return ExitFailure
	default:
		return ExitUsage
	}
}

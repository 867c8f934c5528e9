package types

import (
	"strings"

	"github.com/juju/errors"
)

var (
	_ error = &CycleError{}
)

/**
 * NewCycleError builds the error raised when graph validation finds a
 * dependency cycle. The nodes are listed in walk order; only one cycle
 * is reported even if the edge set contains several.
 */
func NewCycleError(cycle []string) error {
	return &CycleError{Cycle: cycle}
}

type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "dependency cycle"
	}
	walk := append(append([]string{}, e.Cycle...), e.Cycle[0])
	return "dependency cycle: " + strings.Join(walk, " -> ")
}

func IsCycleError(err error) bool {
	_, ok := errors.Cause(err).(*CycleError)
	return ok
}

package backtest

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when none of the requested symbols yields usable
// bar data. Individual symbol failures are skipped with a warning; only a
// total failure aborts the run.
var ErrNoData = errors.New("no valid data for any requested symbol")

// ValidationError reports a bad request rejected before simulation starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters: %s: %s", e.Field, e.Reason)
}

// SimulationError reports an internal invariant violation during the bar
// loop. It is fatal: the run aborts and no partial result is returned.
type SimulationError struct {
	RunID string
	Err   error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("internal simulation failure (run %s): %v", e.RunID, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

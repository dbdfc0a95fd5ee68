package sim

import (
	"errors"
	"fmt"
)

// ErrAlreadyRealized is returned when a proposal is realized a second time.
var ErrAlreadyRealized = errors.New("sim: proposal already realized")

// FaultError is an internal inconsistency found while walking forward
// candles: a malformed bar, an impossible level, data the simulator cannot
// trust. It is always surfaced upward and must trigger a portfolio rollback;
// it is never control flow.
type FaultError struct {
	Bar    int // index into the proposal's forward slice, -1 if not bar-specific
	Reason string
}

func (e *FaultError) Error() string {
	if e.Bar >= 0 {
		return fmt.Sprintf("sim: fault at forward bar %d: %s", e.Bar, e.Reason)
	}
	return fmt.Sprintf("sim: fault: %s", e.Reason)
}

// IsFault reports whether err is a simulation fault (including a double
// realize).
func IsFault(err error) bool {
	var fe *FaultError
	return errors.As(err, &fe) || errors.Is(err, ErrAlreadyRealized)
}

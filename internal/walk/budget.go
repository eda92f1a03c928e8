package walk

import (
	"fmt"
	"time"
)

// Mode selects the traversal order of the shared worklist.
type Mode string

const (
	// ModeBFS dequeues from the front of the worklist (level order).
	ModeBFS Mode = "bfs"
	// ModeDFS dequeues from the back of the worklist. Siblings appear
	// interleaved with deeper descendants in stack order, not pure
	// pre-order; this is an observable contract of the mode.
	ModeDFS Mode = "dfs"
)

// ParseMode validates a caller-supplied mode string. Empty defaults to
// BFS.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBFS:
		return ModeBFS, nil
	case ModeDFS:
		return ModeDFS, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want %q or %q)", s, ModeBFS, ModeDFS)
	}
}

// Unlimited disables a count or depth bound when used as a limit value.
const Unlimited = -1

// budgetClock tracks the wall-clock budget of one walk. A negative
// limit disables the time bound entirely.
type budgetClock struct {
	start time.Time
	limit time.Duration
}

func newBudgetClock(limit time.Duration) budgetClock {
	return budgetClock{start: time.Now(), limit: limit}
}

func (c budgetClock) expired() bool {
	return c.limit >= 0 && time.Since(c.start) > c.limit
}

func (c budgetClock) elapsed() time.Duration {
	return time.Since(c.start)
}

package serialstream

import "go.uber.org/atomic"

// guard admits one operation at a time and rejects the rest instead of
// queueing them.
type guard struct {
	busy atomic.Bool
}

// acquire returns a release func, or ErrConcurrentAccess when the guard is held.
func (g *guard) acquire() (release func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrConcurrentAccess
	}
	return func() { g.busy.Store(false) }, nil
}

func (g *guard) held() bool {
	return g.busy.Load()
}

package reservation

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often a Sweeper invokes ExpireStale when
// none is configured.
const DefaultSweepInterval = 1 * time.Minute

// Sweeper drives Engine.ExpireStale on a fixed interval until its context
// is canceled. It runs on its own timed task and contends for the same
// per-node critical sections the engine's other operations use.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

// NewSweeper builds a Sweeper for engine. A non-positive interval falls
// back to DefaultSweepInterval.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Run blocks, invoking ExpireStale every interval, until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.engine.ExpireStale()
		}
	}
}

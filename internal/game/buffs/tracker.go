package buffs

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/inventory"
)

// Tracker owns the current Aggregated for a run.
//
// Not safe for concurrent use.
type Tracker struct {
	reg     *catalog.Registry
	logger  *zap.Logger
	current *Aggregated
}

// NewTracker creates a Tracker with no modifiers.
//
// Precondition: reg is non-nil; logger may be nil.
func NewTracker(reg *catalog.Registry, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{reg: reg, logger: logger, current: Empty()}
}

// Recompute replaces the current modifiers with a fresh aggregation of owned.
func (t *Tracker) Recompute(owned []inventory.OwnedItem) {
	t.current = Aggregate(owned, t.reg, t.logger)
	t.logger.Debug("buffs recomputed", t.current.Fields()...)
}

// Apply applies the current modifiers for stat to base.
func (t *Tracker) Apply(stat string, base float64) float64 {
	return t.current.Apply(stat, base)
}

// Current returns the current modifiers.
func (t *Tracker) Current() *Aggregated { return t.current }

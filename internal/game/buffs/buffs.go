// Package buffs folds the effects of owned passive items into per-stat
// modifiers that gameplay systems apply to their base values.
package buffs

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/inventory"
)

// Aggregated holds the summed flat and percent modifiers per stat.
//
// Invariant: always built from the complete owned set, never patched.
type Aggregated struct {
	flat    map[string]float64
	percent map[string]float64
}

// Empty returns an Aggregated with no modifiers.
func Empty() *Aggregated {
	return &Aggregated{flat: map[string]float64{}, percent: map[string]float64{}}
}

// Aggregate sums the effects of every owned passive at its current level.
// Weapons are ignored. An unknown item ID or a missing level entry is logged
// at warn level and that item is skipped.
//
// Precondition: reg is non-nil; logger may be nil.
// Postcondition: the result depends only on the owned set, not on call history.
func Aggregate(owned []inventory.OwnedItem, reg *catalog.Registry, logger *zap.Logger) *Aggregated {
	if logger == nil {
		logger = zap.NewNop()
	}
	agg := Empty()
	for _, it := range owned {
		if it.Kind != catalog.KindPassive {
			continue
		}
		def, ok := reg.Item(it.ItemID)
		if !ok {
			logger.Warn("owned passive missing from catalog",
				zap.String("item_id", it.ItemID),
				zap.Int("level", it.Level),
			)
			continue
		}
		effects, ok := def.Effects[it.Level]
		if !ok {
			logger.Warn("passive has no effects for level",
				zap.String("item_id", it.ItemID),
				zap.Int("level", it.Level),
				zap.Int("max_level", def.MaxLevel),
			)
			continue
		}
		for stat, m := range effects {
			switch m.Mode {
			case catalog.Flat:
				agg.flat[stat] += m.Amount
			case catalog.Percent:
				agg.percent[stat] += m.Amount
			}
		}
	}
	return agg
}

// Apply returns (base + flat) * (1 + percent/100) for stat. Stats without
// modifiers return base unchanged.
func (a *Aggregated) Apply(stat string, base float64) float64 {
	return (base + a.flat[stat]) * (1 + a.percent[stat]/100)
}

// Flat returns the summed flat modifier for stat.
func (a *Aggregated) Flat(stat string) float64 { return a.flat[stat] }

// Percent returns the summed percent modifier for stat.
func (a *Aggregated) Percent(stat string) float64 { return a.percent[stat] }

// Stats returns every stat with a non-zero modifier, sorted.
func (a *Aggregated) Stats() []string {
	seen := make(map[string]struct{}, len(a.flat)+len(a.percent))
	for s, v := range a.flat {
		if v != 0 {
			seen[s] = struct{}{}
		}
	}
	for s, v := range a.percent {
		if v != 0 {
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Fields renders the modifiers as zap fields for logging.
func (a *Aggregated) Fields() []zap.Field {
	stats := a.Stats()
	fields := make([]zap.Field, 0, 2*len(stats))
	for _, s := range stats {
		if v := a.flat[s]; v != 0 {
			fields = append(fields, zap.Float64(s+"_flat", v))
		}
		if v := a.percent[s]; v != 0 {
			fields = append(fields, zap.Float64(s+"_pct", v))
		}
	}
	return fields
}

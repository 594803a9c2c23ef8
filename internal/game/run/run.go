// Package run ties one play session's inventory, buffs, upgrade menu and
// randomness together and converts experience into level-ups.
package run

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/buffs"
	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/upgrade"
)

// Config holds the per-run tuning.
type Config struct {
	Upgrade      upgrade.Config
	WeaponSlots  int
	PassiveSlots int
	// XPBase and XPGrowth define the XP needed to leave level L:
	// XPBase + XPGrowth*(L-1).
	XPBase   int
	XPGrowth int
}

// Run is the explicit game-state context for one play session.
//
// Not safe for concurrent use.
type Run struct {
	id     uuid.UUID
	cfg    Config
	reg    *catalog.Registry
	src    dice.Seeded
	inv    *inventory.Inventory
	buffs  *buffs.Tracker
	menu   *upgrade.Menu
	logger *zap.Logger

	level int
	xp    int
}

// New starts a fresh run at level 1 with an empty inventory.
//
// Precondition: reg and src must be non-nil; bus, logger and recorder may be nil.
// Postcondition: Returns a Run with a new random ID and a closed menu.
func New(cfg Config, reg *catalog.Registry, src dice.Seeded, bus event.Bus, logger *zap.Logger, recorder upgrade.Recorder) *Run {
	return build(uuid.New(), cfg, reg, src, bus, logger, recorder)
}

func build(id uuid.UUID, cfg Config, reg *catalog.Registry, src dice.Seeded, bus event.Bus, logger *zap.Logger, recorder upgrade.Recorder) *Run {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", id.String()))
	inv := inventory.New(cfg.WeaponSlots, cfg.PassiveSlots)
	tracker := buffs.NewTracker(reg, logger)
	return &Run{
		id:     id,
		cfg:    cfg,
		reg:    reg,
		src:    src,
		inv:    inv,
		buffs:  tracker,
		menu:   upgrade.NewMenu(cfg.Upgrade, reg, inv, tracker, bus, src, logger, recorder),
		logger: logger,
		level:  1,
	}
}

// ID returns the run's identifier.
func (r *Run) ID() uuid.UUID { return r.id }

// Seed returns the seed of the run's random source.
func (r *Run) Seed() uint64 { return r.src.Seed() }

// Level returns the player's current level.
func (r *Run) Level() int { return r.level }

// XP returns the experience accumulated toward the next level.
func (r *Run) XP() int { return r.xp }

// XPToNext returns the experience needed to leave the current level.
func (r *Run) XPToNext() int {
	return xpForLevel(r.level, r.cfg)
}

func xpForLevel(level int, cfg Config) int {
	need := cfg.XPBase + cfg.XPGrowth*(level-1)
	if need < 1 {
		need = 1
	}
	return need
}

// GainXP adds n experience and queues one menu level-up for every threshold
// crossed.
//
// Precondition: n >= 0.
// Postcondition: returns the number of levels gained; XP() < XPToNext().
func (r *Run) GainXP(ctx context.Context, n int) int {
	if n <= 0 {
		return 0
	}
	r.xp += n
	gained := 0
	for r.xp >= r.XPToNext() {
		r.xp -= r.XPToNext()
		r.level++
		gained++
		r.logger.Info("level up", zap.Int("level", r.level))
		r.menu.LevelUp(ctx)
	}
	return gained
}

// AddCoins credits n coins.
func (r *Run) AddCoins(n int) error { return r.inv.AddCoins(n) }

// Apply applies the current passive buffs for stat to base.
func (r *Run) Apply(stat string, base float64) float64 { return r.buffs.Apply(stat, base) }

// WeaponStats returns the owned weapon's levelled stats with passive buffs
// applied to each stat.
func (r *Run) WeaponStats(id string) (catalog.WeaponStats, bool) {
	it, ok := r.inv.Owned(id)
	if !ok || it.Kind != catalog.KindWeapon {
		return catalog.WeaponStats{}, false
	}
	out := it.Stats
	for _, stat := range catalog.WeaponStatKeys {
		v, _ := it.Stats.Get(stat)
		out = out.With(stat, r.buffs.Apply(stat, v))
	}
	return out, true
}

// Menu returns the run's upgrade menu.
func (r *Run) Menu() *upgrade.Menu { return r.menu }

// Inventory returns the run's inventory.
func (r *Run) Inventory() *inventory.Inventory { return r.inv }

// Buffs returns the run's buff tracker.
func (r *Run) Buffs() *buffs.Tracker { return r.buffs }

// Snapshot is the persistable state of a run between level-ups.
type Snapshot struct {
	RunID uuid.UUID
	Seed  uint64
	// RNGState is the random source's position; empty means the start of
	// Seed's sequence.
	RNGState []byte
	Level    int
	XP       int
	Luck     int
	Coins    int
	Items    []inventory.OwnedItem
}

// Snapshot captures the run's persistable state. An open menu and queued
// level-ups are not captured.
func (r *Run) Snapshot() (Snapshot, error) {
	state, err := r.src.State()
	if err != nil {
		return Snapshot{}, fmt.Errorf("run: snapshot %s: %w", r.id, err)
	}
	items := append(r.inv.OwnedWeapons(), r.inv.OwnedPassives()...)
	return Snapshot{
		RunID:    r.id,
		Seed:     r.src.Seed(),
		RNGState: state,
		Level:    r.level,
		XP:       r.xp,
		Luck:     r.inv.Luck(),
		Coins:    r.inv.Coins(),
		Items:    items,
	}, nil
}

// Restore rebuilds a run from snap. The random source resumes at
// snap.RNGState, so the next draft is the one the original run would have
// drawn, and buffs are recomputed from the restored items.
//
// Precondition: reg must contain every item in snap.
// Postcondition: Returns a Run whose Snapshot() equals snap up to weapon
// stats, which are recomputed from the catalog; or an error.
func Restore(snap Snapshot, cfg Config, reg *catalog.Registry, bus event.Bus, logger *zap.Logger, recorder upgrade.Recorder) (*Run, error) {
	src, err := dice.RestoreSeededSource(snap.Seed, snap.RNGState)
	if err != nil {
		return nil, fmt.Errorf("run: restore %s: %w", snap.RunID, err)
	}
	r := build(snap.RunID, cfg, reg, src, bus, logger, recorder)
	for _, it := range snap.Items {
		def, ok := reg.Item(it.ItemID)
		if !ok {
			return nil, fmt.Errorf("run: restore %s: item %q not in catalog", snap.RunID, it.ItemID)
		}
		if err := r.inv.Restore(it, def); err != nil {
			return nil, fmt.Errorf("run: restore %s: %w", snap.RunID, err)
		}
	}
	if err := r.inv.AddCoins(snap.Coins); err != nil {
		return nil, fmt.Errorf("run: restore %s: %w", snap.RunID, err)
	}
	r.inv.SetLuck(snap.Luck)
	r.level = max(snap.Level, 1)
	r.xp = max(snap.XP, 0)
	r.buffs.Recompute(r.inv.OwnedPassives())
	return r, nil
}

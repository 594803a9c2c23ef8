package run_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/catalog/catalogtest"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/event"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/rarity"
	"github.com/cory-johannsen/arena/internal/game/run"
	"github.com/cory-johannsen/arena/internal/game/upgrade"
)

func testConfig() run.Config {
	return run.Config{
		Upgrade:      upgrade.Config{CardsPerDraft: 3, Rarity: rarity.DefaultParams()},
		WeaponSlots:  6,
		PassiveSlots: 6,
		XPBase:       5,
		XPGrowth:     10,
	}
}

func testRegistry(t *testing.T) *catalog.Registry {
	might := &catalog.ItemDef{
		ID: "might", Name: "Might", Kind: catalog.KindPassive, Rarity: catalog.RarityCommon, MaxLevel: 1,
		Effects: map[int]map[string]catalog.Modifier{1: {
			catalog.StatDamage:   catalog.FlatMod(2),
			catalog.StatCooldown: catalog.PercentMod(-50),
		}},
	}
	return catalogtest.Registry(t,
		catalogtest.Weapon("wand", catalog.RarityCommon, 3),
		might,
	)
}

func pick(t *testing.T, r *run.Run, id string) {
	t.Helper()
	for i, c := range r.Menu().Cards() {
		if c.ItemID == id {
			_, err := r.Menu().Pick(context.Background(), i)
			require.NoError(t, err)
			return
		}
	}
	t.Fatalf("card %q not offered", id)
}

func TestRun_GainXPThresholds(t *testing.T) {
	r := run.New(testConfig(), testRegistry(t), dice.NewSeededSource(1), nil, zaptest.NewLogger(t), nil)
	ctx := context.Background()

	assert.Equal(t, 1, r.Level())
	assert.Equal(t, 5, r.XPToNext())

	assert.Zero(t, r.GainXP(ctx, 4))
	assert.False(t, r.Menu().IsOpen())

	// 4+21 = 25: level 1->2 costs 5, 2->3 costs 15, leaving 5 of 25 needed for 3->4.
	assert.Equal(t, 2, r.GainXP(ctx, 21))
	assert.Equal(t, 3, r.Level())
	assert.Equal(t, 5, r.XP())
	assert.Equal(t, 25, r.XPToNext())
	assert.True(t, r.Menu().IsOpen())
	assert.Equal(t, 2, r.Menu().Pending())

	assert.Zero(t, r.GainXP(ctx, 0))
	assert.Zero(t, r.GainXP(ctx, -3))
}

func TestRun_WeaponStatsApplyBuffs(t *testing.T) {
	bus := event.NewMemoryBus()
	var log []event.Event
	event.SubscribeAll(bus, event.Recording(&log))
	r := run.New(testConfig(), testRegistry(t), dice.NewSeededSource(1), bus, nil, nil)
	ctx := context.Background()

	_, ok := r.WeaponStats("wand")
	assert.False(t, ok)

	r.GainXP(ctx, 5)
	pick(t, r, "wand")
	r.GainXP(ctx, 15)
	pick(t, r, "might")

	stats, ok := r.WeaponStats("wand")
	require.True(t, ok)
	assert.Equal(t, 12.0, stats.Damage)
	assert.Equal(t, 0.5, stats.Cooldown)
	assert.Equal(t, 300.0, stats.ProjectileSpeed)
	assert.Equal(t, 12.0, r.Apply(catalog.StatDamage, 10))

	_, ok = r.WeaponStats("might")
	assert.False(t, ok, "passives have no weapon stats")
	assert.NotEmpty(t, log)
}

func TestRun_SnapshotRestoreRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	r := run.New(testConfig(), reg, dice.NewSeededSource(99), nil, nil, nil)
	ctx := context.Background()
	r.GainXP(ctx, 5)
	pick(t, r, "wand")
	r.GainXP(ctx, 15)
	pick(t, r, "might")
	r.GainXP(ctx, 3)
	require.NoError(t, r.AddCoins(40))
	r.Inventory().SetLuck(2)

	snap, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, r.ID(), snap.RunID)
	assert.Equal(t, uint64(99), snap.Seed)
	assert.Equal(t, 3, snap.Level)
	assert.Equal(t, 3, snap.XP)
	assert.Len(t, snap.Items, 2)

	assert.NotEmpty(t, snap.RNGState)

	restored, err := run.Restore(snap, testConfig(), reg, nil, nil, nil)
	require.NoError(t, err)
	again, err := restored.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, again)
	assert.Equal(t, uint64(99), restored.Seed())
	assert.Equal(t, 12.0, restored.Apply(catalog.StatDamage, 10), "buffs recomputed on restore")
	assert.False(t, restored.Menu().IsOpen())
}

func passiveRegistry(t *testing.T) *catalog.Registry {
	rarities := []catalog.Rarity{catalog.RarityCommon, catalog.RarityRare, catalog.RarityEpic, catalog.RarityLegendary}
	var defs []*catalog.ItemDef
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		defs = append(defs, catalogtest.Passive(id, rarities[i%len(rarities)], 5))
	}
	return catalogtest.Registry(t, defs...)
}

func draftIDs(r *run.Run) []string {
	var ids []string
	for _, c := range r.Menu().Cards() {
		ids = append(ids, c.ItemID)
	}
	return ids
}

func levelAndSkip(t *testing.T, r *run.Run) []string {
	t.Helper()
	ctx := context.Background()
	r.GainXP(ctx, r.XPToNext()-r.XP())
	require.True(t, r.Menu().IsOpen())
	ids := draftIDs(r)
	require.NoError(t, r.Menu().Skip(ctx))
	return ids
}

func TestRestore_ResumesRandomStream(t *testing.T) {
	reg := passiveRegistry(t)
	r := run.New(testConfig(), reg, dice.NewSeededSource(99), nil, nil, nil)
	for i := 0; i < 4; i++ {
		levelAndSkip(t, r)
	}
	snap, err := r.Snapshot()
	require.NoError(t, err)

	restored, err := run.Restore(snap, testConfig(), reg, nil, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		want := levelAndSkip(t, r)
		got := levelAndSkip(t, restored)
		require.Len(t, want, 3)
		assert.Equal(t, want, got, "draft %d after resume", 5+i)
	}
}

func TestRestore_EmptyRNGStateStartsFromSeed(t *testing.T) {
	reg := passiveRegistry(t)
	fresh := run.New(testConfig(), reg, dice.NewSeededSource(99), nil, nil, nil)
	restored, err := run.Restore(run.Snapshot{Seed: 99, Level: 1}, testConfig(), reg, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, levelAndSkip(t, fresh), levelAndSkip(t, restored))
}

func TestRestore_MalformedRNGState(t *testing.T) {
	snap := run.Snapshot{Seed: 1, Level: 1, RNGState: []byte{1, 2, 3}}
	_, err := run.Restore(snap, testConfig(), testRegistry(t), nil, nil, nil)
	assert.ErrorContains(t, err, "generator state")
}

func TestRestore_UnknownItem(t *testing.T) {
	snap := run.Snapshot{Seed: 1, Level: 2, Items: []inventory.OwnedItem{{ItemID: "ghost", Kind: catalog.KindPassive, Level: 1}}}
	_, err := run.Restore(snap, testConfig(), testRegistry(t), nil, nil, nil)
	assert.ErrorContains(t, err, "ghost")
}

func TestRestore_ClampsLevels(t *testing.T) {
	snap := run.Snapshot{Seed: 1, Level: 0, XP: -4, Items: []inventory.OwnedItem{{ItemID: "wand", Kind: catalog.KindWeapon, Level: 7}}}
	r, err := run.Restore(snap, testConfig(), testRegistry(t), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Level())
	assert.Zero(t, r.XP())
	it, ok := r.Inventory().Owned("wand")
	require.True(t, ok)
	assert.Equal(t, 3, it.Level)
}

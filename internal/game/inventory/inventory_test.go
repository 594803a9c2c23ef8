package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/catalog/catalogtest"
	"github.com/cory-johannsen/arena/internal/game/inventory"
)

func TestInventory_AddWeapon_TakesFirstFreeSlot(t *testing.T) {
	inv := inventory.New(2, 2)
	a, err := inv.AddOwnedItem(catalogtest.Weapon("a", catalog.RarityCommon, 3))
	require.NoError(t, err)
	b, err := inv.AddOwnedItem(catalogtest.Weapon("b", catalog.RarityCommon, 3))
	require.NoError(t, err)

	assert.Equal(t, 0, a.Slot)
	assert.Equal(t, 1, b.Slot)
	assert.Equal(t, 1, a.Level)
	assert.Equal(t, 10.0, a.Stats.Damage)
	assert.Zero(t, inv.FreeWeaponSlots())

	_, err = inv.AddOwnedItem(catalogtest.Weapon("c", catalog.RarityCommon, 3))
	assert.ErrorIs(t, err, inventory.ErrNoFreeSlot)
	assert.Len(t, inv.OwnedWeapons(), 2)
}

func TestInventory_AddDuplicateRejected(t *testing.T) {
	inv := inventory.New(2, 2)
	def := catalogtest.Passive("p", catalog.RarityCommon, 2)
	_, err := inv.AddOwnedItem(def)
	require.NoError(t, err)
	_, err = inv.AddOwnedItem(def)
	assert.ErrorIs(t, err, inventory.ErrAlreadyOwned)
	assert.Len(t, inv.OwnedPassives(), 1)
}

func TestInventory_LevelUpCapsAtMax(t *testing.T) {
	inv := inventory.New(1, 0)
	def := catalogtest.Weapon("w", catalog.RarityCommon, 2)
	_, err := inv.AddOwnedItem(def)
	require.NoError(t, err)

	it, err := inv.LevelUpOwnedItem(def)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Level)
	assert.Equal(t, 15.0, it.Stats.Damage)

	it, err = inv.LevelUpOwnedItem(def)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Level, "level must not exceed MaxLevel")
}

func TestInventory_LevelUpNotOwned(t *testing.T) {
	inv := inventory.New(1, 1)
	_, err := inv.LevelUpOwnedItem(catalogtest.Passive("p", catalog.RarityRare, 1))
	assert.ErrorIs(t, err, inventory.ErrNotOwned)
}

func TestInventory_PassiveLimit(t *testing.T) {
	inv := inventory.New(0, 1)
	assert.Equal(t, 1, inv.FreePassiveSlots())
	_, err := inv.AddOwnedItem(catalogtest.Passive("p1", catalog.RarityCommon, 1))
	require.NoError(t, err)
	assert.Zero(t, inv.FreePassiveSlots())
	_, err = inv.AddOwnedItem(catalogtest.Passive("p2", catalog.RarityCommon, 1))
	assert.ErrorIs(t, err, inventory.ErrNoFreeSlot)
}

func TestInventory_UnlimitedPassives(t *testing.T) {
	inv := inventory.New(0, inventory.Unlimited)
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := inv.AddOwnedItem(catalogtest.Passive(id, catalog.RarityCommon, 1))
		require.NoError(t, err)
	}
	assert.Equal(t, inventory.Unlimited, inv.FreePassiveSlots())
}

func TestInventory_OwnedReturnsCopy(t *testing.T) {
	inv := inventory.New(1, 1)
	_, err := inv.AddOwnedItem(catalogtest.Weapon("w", catalog.RarityCommon, 3))
	require.NoError(t, err)

	it, ok := inv.Owned("w")
	require.True(t, ok)
	it.Level = 99
	again, _ := inv.Owned("w")
	assert.Equal(t, 1, again.Level)

	_, ok = inv.Owned("missing")
	assert.False(t, ok)
}

func TestInventory_Levels(t *testing.T) {
	inv := inventory.New(1, 1)
	w := catalogtest.Weapon("w", catalog.RarityCommon, 3)
	_, _ = inv.AddOwnedItem(w)
	_, _ = inv.LevelUpOwnedItem(w)
	_, _ = inv.AddOwnedItem(catalogtest.Passive("p", catalog.RarityCommon, 2))
	assert.Equal(t, map[string]int{"w": 2, "p": 1}, inv.Levels())
}

func TestInventory_Restore(t *testing.T) {
	inv := inventory.New(3, 2)
	w := catalogtest.Weapon("w", catalog.RarityCommon, 3)
	require.NoError(t, inv.Restore(inventory.OwnedItem{ItemID: "w", Level: 9, Slot: 2}, w))

	it, ok := inv.Owned("w")
	require.True(t, ok)
	assert.Equal(t, 3, it.Level, "restored level is clamped to MaxLevel")
	assert.Equal(t, 2, it.Slot)
	assert.Equal(t, 20.0, it.Stats.Damage)

	assert.ErrorIs(t, inv.Restore(inventory.OwnedItem{ItemID: "w", Level: 1}, w), inventory.ErrAlreadyOwned)
}

func TestInventory_Coins(t *testing.T) {
	inv := inventory.New(1, 1)
	require.NoError(t, inv.AddCoins(5))
	assert.ErrorIs(t, inv.DeductCoins(6), inventory.ErrInsufficientCoins)
	assert.Equal(t, 5, inv.Coins())
	require.NoError(t, inv.DeductCoins(5))
	assert.Zero(t, inv.Coins())
}

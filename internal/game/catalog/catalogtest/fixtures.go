// Package catalogtest builds small item definitions and registries for tests.
package catalogtest

import (
	"testing"

	"github.com/cory-johannsen/arena/internal/game/catalog"
)

// Weapon returns a valid weapon definition with 10 damage, a 1s cooldown and
// +5 damage per level.
func Weapon(id string, rarity catalog.Rarity, maxLevel int) *catalog.ItemDef {
	return &catalog.ItemDef{
		ID:       id,
		Name:     id,
		Kind:     catalog.KindWeapon,
		Rarity:   rarity,
		MaxLevel: maxLevel,
		BaseStats: &catalog.WeaponStats{
			Damage: 10, Cooldown: 1, ProjectileSpeed: 300, ProjectileCount: 1, Area: 1,
		},
		LevelUps: map[string]catalog.Modifier{catalog.StatDamage: catalog.FlatMod(5)},
	}
}

// Passive returns a valid passive whose every level grants +10% damage times
// the level.
func Passive(id string, rarity catalog.Rarity, maxLevel int) *catalog.ItemDef {
	effects := make(map[int]map[string]catalog.Modifier, maxLevel)
	for lvl := 1; lvl <= maxLevel; lvl++ {
		effects[lvl] = map[string]catalog.Modifier{catalog.StatDamage: catalog.PercentMod(float64(10 * lvl))}
	}
	return &catalog.ItemDef{
		ID:       id,
		Name:     id,
		Kind:     catalog.KindPassive,
		Rarity:   rarity,
		MaxLevel: maxLevel,
		Effects:  effects,
	}
}

// Registry registers defs into a new Registry, failing t on any error.
func Registry(t testing.TB, defs ...*catalog.ItemDef) *catalog.Registry {
	t.Helper()
	reg := catalog.NewRegistry()
	if err := reg.RegisterAll(defs); err != nil {
		t.Fatalf("catalogtest.Registry: %v", err)
	}
	return reg
}

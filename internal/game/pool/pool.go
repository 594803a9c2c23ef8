// Package pool computes which catalog items are eligible to appear as
// upgrade cards for the current inventory.
package pool

import (
	"github.com/cory-johannsen/arena/internal/game/catalog"
)

// Unlimited as a free passive slot count means no passive limit applies.
const Unlimited = -1

// Candidate is an item eligible to be drafted.
type Candidate struct {
	Def *catalog.ItemDef
	// CurrentLevel is 0 when the item is not owned.
	CurrentLevel int
}

// IsNew reports whether picking the candidate acquires a new item.
func (c Candidate) IsNew() bool { return c.CurrentLevel == 0 }

// TargetLevel is the level the item will have once picked.
func (c Candidate) TargetLevel() int { return c.CurrentLevel + 1 }

// Build returns the eligible candidates in catalog ID order.
//
// An item is excluded when it is owned at its max level, when it is an unowned
// weapon and no weapon slot is free, or when it is an unowned passive and a
// passive limit exists with no free slot.
//
// Precondition: reg is non-nil; owned maps item ID to current level.
// Postcondition: every candidate has CurrentLevel < Def.MaxLevel.
func Build(reg *catalog.Registry, owned map[string]int, freeWeaponSlots, freePassiveSlots int) []Candidate {
	var out []Candidate
	for _, def := range reg.All() {
		level := owned[def.ID]
		if level >= def.MaxLevel {
			continue
		}
		if level == 0 {
			switch def.Kind {
			case catalog.KindWeapon:
				if freeWeaponSlots <= 0 {
					continue
				}
			case catalog.KindPassive:
				if freePassiveSlots != Unlimited && freePassiveSlots <= 0 {
					continue
				}
			}
		}
		out = append(out, Candidate{Def: def, CurrentLevel: level})
	}
	return out
}

// ByRarity groups candidates by tier, preserving order within each tier.
func ByRarity(cands []Candidate) map[catalog.Rarity][]Candidate {
	out := make(map[catalog.Rarity][]Candidate, len(catalog.Rarities))
	for _, c := range cands {
		out[c.Def.Rarity] = append(out[c.Def.Rarity], c)
	}
	return out
}

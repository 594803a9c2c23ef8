// Package inventory holds the weapons and passive items a player owns during a
// run, together with luck and coins.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/catalog"
)

// Unlimited as a passive slot count disables the passive limit.
const Unlimited = -1

var (
	// ErrAlreadyOwned is returned when adding an item the player already has.
	ErrAlreadyOwned = errors.New("inventory: item already owned")
	// ErrNotOwned is returned when levelling an item the player does not have.
	ErrNotOwned = errors.New("inventory: item not owned")
	// ErrNoFreeSlot is returned when every slot of the item's kind is occupied.
	ErrNoFreeSlot = errors.New("inventory: no free slot")
)

// OwnedItem is one acquired weapon or passive.
type OwnedItem struct {
	ItemID string
	Kind   catalog.Kind
	// Level is in 1..MaxLevel of the item's definition.
	Level int
	// Slot is the weapon slot index, or the passive's position in the passive list.
	Slot int
	// Stats is the weapon's base stats with level-ups applied. Zero for passives.
	Stats catalog.WeaponStats
}

// Inventory is the reference owned-item store driven by the upgrade menu.
//
// Not safe for concurrent use.
type Inventory struct {
	weapons      []*OwnedItem
	passives     []*OwnedItem
	passiveLimit int
	luck         int
	wallet       Wallet
}

// New creates an empty Inventory.
//
// Precondition: weaponSlots >= 0; passiveSlots >= 0 or Unlimited.
// Postcondition: no items are owned and luck and coins are zero.
func New(weaponSlots, passiveSlots int) *Inventory {
	if weaponSlots < 0 {
		weaponSlots = 0
	}
	if passiveSlots < Unlimited {
		passiveSlots = Unlimited
	}
	return &Inventory{
		weapons:      make([]*OwnedItem, weaponSlots),
		passiveLimit: passiveSlots,
	}
}

// OwnedWeapons returns copies of the owned weapons in slot order.
func (inv *Inventory) OwnedWeapons() []OwnedItem {
	out := make([]OwnedItem, 0, len(inv.weapons))
	for _, w := range inv.weapons {
		if w != nil {
			out = append(out, *w)
		}
	}
	return out
}

// OwnedPassives returns copies of the owned passives in acquisition order.
func (inv *Inventory) OwnedPassives() []OwnedItem {
	out := make([]OwnedItem, 0, len(inv.passives))
	for _, p := range inv.passives {
		out = append(out, *p)
	}
	return out
}

// Owned returns a copy of the owned item with the given ID.
func (inv *Inventory) Owned(id string) (OwnedItem, bool) {
	if it := inv.find(id); it != nil {
		return *it, true
	}
	return OwnedItem{}, false
}

// Levels maps every owned item ID to its current level.
func (inv *Inventory) Levels() map[string]int {
	out := make(map[string]int, len(inv.weapons)+len(inv.passives))
	for _, w := range inv.weapons {
		if w != nil {
			out[w.ItemID] = w.Level
		}
	}
	for _, p := range inv.passives {
		out[p.ItemID] = p.Level
	}
	return out
}

// Luck returns the player's effective luck.
func (inv *Inventory) Luck() int { return inv.luck }

// SetLuck replaces the player's effective luck.
func (inv *Inventory) SetLuck(luck int) { inv.luck = luck }

// Coins returns the current coin balance.
func (inv *Inventory) Coins() int { return inv.wallet.Balance() }

// AddCoins credits n coins.
func (inv *Inventory) AddCoins(n int) error { return inv.wallet.Add(n) }

// DeductCoins debits n coins; the balance is unchanged on error.
func (inv *Inventory) DeductCoins(n int) error { return inv.wallet.Deduct(n) }

// FreeWeaponSlots returns the number of empty weapon slots.
func (inv *Inventory) FreeWeaponSlots() int {
	free := 0
	for _, w := range inv.weapons {
		if w == nil {
			free++
		}
	}
	return free
}

// FreePassiveSlots returns the number of passives that can still be acquired,
// or Unlimited when no passive limit applies.
func (inv *Inventory) FreePassiveSlots() int {
	if inv.passiveLimit == Unlimited {
		return Unlimited
	}
	return inv.passiveLimit - len(inv.passives)
}

// AddOwnedItem acquires def at level 1. Weapons take the first free slot and
// carry their base stats.
//
// Precondition: def is non-nil and valid.
// Postcondition: on success the returned item is owned at level 1; on error
// the inventory is unchanged.
func (inv *Inventory) AddOwnedItem(def *catalog.ItemDef) (OwnedItem, error) {
	if inv.find(def.ID) != nil {
		return OwnedItem{}, fmt.Errorf("%w: %q", ErrAlreadyOwned, def.ID)
	}
	it := &OwnedItem{ItemID: def.ID, Kind: def.Kind, Level: 1}
	if err := inv.place(it, def); err != nil {
		return OwnedItem{}, err
	}
	return *it, nil
}

// LevelUpOwnedItem raises the owned copy of def by one level, capped at
// def.MaxLevel. Weapon stats are recomputed from the definition.
//
// Precondition: def is non-nil.
// Postcondition: on success the returned item reflects the new level.
func (inv *Inventory) LevelUpOwnedItem(def *catalog.ItemDef) (OwnedItem, error) {
	it := inv.find(def.ID)
	if it == nil {
		return OwnedItem{}, fmt.Errorf("%w: %q", ErrNotOwned, def.ID)
	}
	if it.Level < def.MaxLevel {
		it.Level++
	}
	if it.Kind == catalog.KindWeapon {
		it.Stats = def.StatsAt(it.Level)
	}
	return *it, nil
}

// Restore places a previously owned item at its recorded level, used to
// rebuild an inventory from a snapshot. The level is clamped to 1..MaxLevel and
// weapon stats are recomputed from def.
//
// Precondition: def.ID == item.ItemID.
// Postcondition: on error the inventory is unchanged.
func (inv *Inventory) Restore(item OwnedItem, def *catalog.ItemDef) error {
	if inv.find(def.ID) != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyOwned, def.ID)
	}
	level := min(max(item.Level, 1), def.MaxLevel)
	return inv.place(&OwnedItem{ItemID: def.ID, Kind: def.Kind, Level: level, Slot: item.Slot}, def)
}

// place stores it in a slot of its kind. A weapon keeps it.Slot when that slot
// is in range and empty, otherwise it takes the first free slot.
func (inv *Inventory) place(it *OwnedItem, def *catalog.ItemDef) error {
	switch def.Kind {
	case catalog.KindWeapon:
		slot := -1
		if it.Slot >= 0 && it.Slot < len(inv.weapons) && inv.weapons[it.Slot] == nil {
			slot = it.Slot
		} else {
			for i, w := range inv.weapons {
				if w == nil {
					slot = i
					break
				}
			}
		}
		if slot < 0 {
			return fmt.Errorf("%w for weapon %q", ErrNoFreeSlot, def.ID)
		}
		it.Slot = slot
		it.Stats = def.StatsAt(it.Level)
		inv.weapons[slot] = it
	case catalog.KindPassive:
		if inv.FreePassiveSlots() == 0 {
			return fmt.Errorf("%w for passive %q", ErrNoFreeSlot, def.ID)
		}
		it.Slot = len(inv.passives)
		it.Stats = catalog.WeaponStats{}
		inv.passives = append(inv.passives, it)
	default:
		return fmt.Errorf("inventory: unknown item kind %q", def.Kind)
	}
	return nil
}

func (inv *Inventory) find(id string) *OwnedItem {
	for _, w := range inv.weapons {
		if w != nil && w.ItemID == id {
			return w
		}
	}
	for _, p := range inv.passives {
		if p.ItemID == id {
			return p
		}
	}
	return nil
}

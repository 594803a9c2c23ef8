// Package catalog holds the static weapon and passive item definitions the
// upgrade engine drafts from. Definitions are loaded once at startup from YAML
// or Lua content and are read-only afterwards.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes weapons from passive items.
type Kind string

const (
	KindWeapon  Kind = "weapon"
	KindPassive Kind = "passive"
)

// Rarity is the drop tier of an item.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities lists every tier from most to least common. Tier indices used by
// the rarity weighter follow this order.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// Index returns the position of r in Rarities, or -1 for an unknown tier.
func (r Rarity) Index() int {
	for i, t := range Rarities {
		if t == r {
			return i
		}
	}
	return -1
}

// Weapon stat keys. Weapon level-ups may only reference these.
const (
	StatDamage          = "damage"
	StatCooldown        = "cooldown"
	StatProjectileSpeed = "projectile_speed"
	StatProjectileCount = "projectile_count"
	StatSpread          = "spread"
	StatArea            = "area"
)

// Player stat keys used by passives outside the weapon stats.
const (
	StatLuck      = "luck"
	StatMaxHealth = "max_health"
	StatMoveSpeed = "move_speed"
)

// WeaponStatKeys lists the weapon stat keys in display order.
var WeaponStatKeys = []string{
	StatDamage, StatCooldown, StatProjectileSpeed, StatProjectileCount, StatSpread, StatArea,
}

// WeaponStats are the numeric firing parameters of a weapon.
type WeaponStats struct {
	Damage          float64 `yaml:"damage"`
	Cooldown        float64 `yaml:"cooldown"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	ProjectileCount float64 `yaml:"projectile_count"`
	Spread          float64 `yaml:"spread"`
	Area            float64 `yaml:"area"`
}

// Get returns the value of stat and whether stat is a weapon stat key.
func (w WeaponStats) Get(stat string) (float64, bool) {
	switch stat {
	case StatDamage:
		return w.Damage, true
	case StatCooldown:
		return w.Cooldown, true
	case StatProjectileSpeed:
		return w.ProjectileSpeed, true
	case StatProjectileCount:
		return w.ProjectileCount, true
	case StatSpread:
		return w.Spread, true
	case StatArea:
		return w.Area, true
	}
	return 0, false
}

// With returns a copy of w with stat set to v. Unknown stats leave w unchanged.
func (w WeaponStats) With(stat string, v float64) WeaponStats {
	switch stat {
	case StatDamage:
		w.Damage = v
	case StatCooldown:
		w.Cooldown = v
	case StatProjectileSpeed:
		w.ProjectileSpeed = v
	case StatProjectileCount:
		w.ProjectileCount = v
	case StatSpread:
		w.Spread = v
	case StatArea:
		w.Area = v
	}
	return w
}

// IsWeaponStat reports whether stat is one of WeaponStatKeys.
func IsWeaponStat(stat string) bool {
	_, ok := WeaponStats{}.Get(stat)
	return ok
}

// ItemDef is the static definition of a weapon or passive item.
//
// Weapons carry BaseStats and LevelUps (applied once per level past 1).
// Passives carry Effects keyed by level, because passive progressions are
// rarely linear.
type ItemDef struct {
	ID          string                      `yaml:"id"`
	Name        string                      `yaml:"name"`
	Description string                      `yaml:"description,omitempty"`
	Kind        Kind                        `yaml:"kind"`
	Rarity      Rarity                      `yaml:"rarity"`
	MaxLevel    int                         `yaml:"max_level"`
	BaseStats   *WeaponStats                `yaml:"base_stats,omitempty"`
	LevelUps    map[string]Modifier         `yaml:"level_ups,omitempty"`
	Effects     map[int]map[string]Modifier `yaml:"effects,omitempty"`
}

// IsWeapon reports whether d is a weapon.
func (d *ItemDef) IsWeapon() bool { return d.Kind == KindWeapon }

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid; otherwise the error
// lists every violation.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if d.Rarity.Index() < 0 {
		errs = append(errs, fmt.Errorf("Rarity must be one of common, rare, epic, legendary; got %q", d.Rarity))
	}
	if d.MaxLevel < 1 {
		errs = append(errs, fmt.Errorf("MaxLevel must be >= 1, got %d", d.MaxLevel))
	}
	switch d.Kind {
	case KindWeapon:
		errs = append(errs, d.validateWeapon()...)
	case KindPassive:
		errs = append(errs, d.validatePassive()...)
	default:
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, passive; got %q", d.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", d.ID, errs)
	}
	return nil
}

func (d *ItemDef) validateWeapon() []error {
	var errs []error
	if d.BaseStats == nil {
		errs = append(errs, errors.New("BaseStats is required when Kind is weapon"))
	} else {
		if d.BaseStats.Cooldown <= 0 {
			errs = append(errs, errors.New("BaseStats.Cooldown must be > 0"))
		}
		if d.BaseStats.ProjectileCount < 1 {
			errs = append(errs, errors.New("BaseStats.ProjectileCount must be >= 1"))
		}
		for _, stat := range WeaponStatKeys {
			if v, _ := d.BaseStats.Get(stat); !isFinite(v) {
				errs = append(errs, fmt.Errorf("BaseStats.%s must be finite, got %v", stat, v))
			}
		}
	}
	for stat, mod := range d.LevelUps {
		if !IsWeaponStat(stat) {
			errs = append(errs, fmt.Errorf("LevelUps references unknown weapon stat %q", stat))
		}
		if !mod.Finite() {
			errs = append(errs, fmt.Errorf("LevelUps.%s amount must be finite, got %v", stat, mod.Amount))
		}
	}
	if len(d.Effects) > 0 {
		errs = append(errs, errors.New("Effects is only valid for passives"))
	}
	return errs
}

func (d *ItemDef) validatePassive() []error {
	var errs []error
	if d.BaseStats != nil || len(d.LevelUps) > 0 {
		errs = append(errs, errors.New("BaseStats and LevelUps are only valid for weapons"))
	}
	for lvl := 1; lvl <= d.MaxLevel; lvl++ {
		if _, ok := d.Effects[lvl]; !ok {
			errs = append(errs, fmt.Errorf("Effects missing level %d", lvl))
		}
	}
	for lvl, set := range d.Effects {
		if lvl < 1 || lvl > d.MaxLevel {
			errs = append(errs, fmt.Errorf("Effects level %d outside 1..%d", lvl, d.MaxLevel))
		}
		for stat, mod := range set {
			if stat == "" {
				errs = append(errs, fmt.Errorf("Effects level %d has an empty stat name", lvl))
			}
			if !mod.Finite() {
				errs = append(errs, fmt.Errorf("Effects level %d %s amount must be finite, got %v", lvl, stat, mod.Amount))
			}
		}
	}
	return errs
}

// StatsAt returns the weapon's stats at level, applying LevelUps once for
// every step past level 1. Within a step, flat deltas apply before percent
// deltas.
//
// Precondition: d is a weapon with non-nil BaseStats; 1 <= level <= MaxLevel.
// Postcondition: StatsAt(1) == *BaseStats.
func (d *ItemDef) StatsAt(level int) WeaponStats {
	if d.BaseStats == nil {
		return WeaponStats{}
	}
	stats := *d.BaseStats
	keys := sortedKeys(d.LevelUps)
	for step := 2; step <= level; step++ {
		for _, mode := range []Mode{Flat, Percent} {
			for _, stat := range keys {
				mod := d.LevelUps[stat]
				if mod.Mode != mode {
					continue
				}
				v, _ := stats.Get(stat)
				if mode == Flat {
					v += mod.Amount
				} else {
					v *= 1 + mod.Amount/100
				}
				stats = stats.With(stat, v)
			}
		}
	}
	return stats
}

// Summary returns a human-readable description of what reaching targetLevel
// grants.
//
// Precondition: 1 <= targetLevel <= MaxLevel.
func (d *ItemDef) Summary(targetLevel int) string {
	switch {
	case d.Kind == KindWeapon && targetLevel <= 1:
		detail := ""
		if d.BaseStats != nil {
			detail = fmt.Sprintf("damage %g, cooldown %gs", d.BaseStats.Damage, d.BaseStats.Cooldown)
		}
		if d.Description == "" {
			return "New weapon: " + detail
		}
		return fmt.Sprintf("%s (%s)", d.Description, detail)
	case d.Kind == KindWeapon:
		return describe(d.LevelUps)
	default:
		s := describe(d.Effects[targetLevel])
		if targetLevel <= 1 && d.Description != "" {
			return fmt.Sprintf("%s (%s)", d.Description, s)
		}
		return s
	}
}

func describe(mods map[string]Modifier) string {
	if len(mods) == 0 {
		return "no effect"
	}
	parts := make([]string, 0, len(mods))
	for _, stat := range sortedKeys(mods) {
		parts = append(parts, stat+" "+mods[stat].String())
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]Modifier) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

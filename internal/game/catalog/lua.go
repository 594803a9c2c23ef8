package catalog

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/arena/internal/scripting"
)

// luaWeaponStatKeys maps the prototype's camelCase weapon fields to stat keys.
var luaWeaponStatKeys = map[string]string{
	"damage":          StatDamage,
	"cooldown":        StatCooldown,
	"projectileSpeed": StatProjectileSpeed,
	"projectileCount": StatProjectileCount,
	"spread":          StatSpread,
	"area":            StatArea,
}

// LoadLua executes the Lua catalog at path in a sandboxed VM and converts the
// returned table into validated ItemDefs. The script must end with
//
//	return { weapons = { ... }, passives = { ... } }
//
// where each weapon carries top-level base stats and a levelUps table of
// modifier strings, and each passive carries an effects array indexed by level.
//
// Precondition: path names a readable Lua file.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadLua(path string) ([]*ItemDef, error) {
	sb := scripting.New(0)
	defer sb.Close()

	v, err := sb.EvalFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLua: executing: %w", err)
	}
	root, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("LoadLua: %q must return a table", path)
	}
	defs, err := parseLuaCatalog(root)
	if err != nil {
		return nil, fmt.Errorf("LoadLua: %q: %w", path, err)
	}
	return defs, nil
}

func parseLuaCatalog(root *lua.LTable) ([]*ItemDef, error) {
	var defs []*ItemDef
	sections := []struct {
		key  string
		kind Kind
	}{
		{"weapons", KindWeapon},
		{"passives", KindPassive},
	}
	for _, sec := range sections {
		lv := root.RawGetString(sec.key)
		if lv == lua.LNil {
			continue
		}
		list, ok := lv.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%s must be a table", sec.key)
		}
		var parseErr error
		list.ForEach(func(k, v lua.LValue) {
			if parseErr != nil {
				return
			}
			entry, ok := v.(*lua.LTable)
			if !ok {
				parseErr = fmt.Errorf("%s[%s] must be a table", sec.key, k.String())
				return
			}
			d, err := parseLuaItem(entry, sec.kind)
			if err != nil {
				parseErr = fmt.Errorf("%s[%s]: %w", sec.key, k.String(), err)
				return
			}
			defs = append(defs, d)
		})
		if parseErr != nil {
			return nil, parseErr
		}
	}
	return defs, nil
}

func parseLuaItem(t *lua.LTable, kind Kind) (*ItemDef, error) {
	d := &ItemDef{
		ID:          luaString(t, "id"),
		Name:        luaString(t, "name"),
		Description: luaString(t, "description"),
		Kind:        kind,
		Rarity:      Rarity(strings.ToLower(luaString(t, "rarity"))),
	}
	maxLevel, err := luaInt(t.RawGetString("maxLevel"))
	if err != nil {
		return nil, fmt.Errorf("maxLevel: %w", err)
	}
	d.MaxLevel = maxLevel
	if d.Rarity == "" {
		d.Rarity = RarityCommon
	}

	switch kind {
	case KindWeapon:
		stats := WeaponStats{}
		for field, stat := range luaWeaponStatKeys {
			stats = stats.With(stat, luaNumber(t, field))
		}
		d.BaseStats = &stats
		mods, err := luaModifiers(t.RawGetString("levelUps"))
		if err != nil {
			return nil, fmt.Errorf("levelUps: %w", err)
		}
		d.LevelUps = mods
	case KindPassive:
		effects, err := luaEffects(t.RawGetString("effects"))
		if err != nil {
			return nil, fmt.Errorf("effects: %w", err)
		}
		d.Effects = effects
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func luaEffects(lv lua.LValue) (map[int]map[string]Modifier, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("must be a table")
	}
	out := make(map[int]map[string]Modifier)
	var err error
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		lvl, lerr := luaInt(k)
		if lerr != nil {
			err = fmt.Errorf("level key %s: %w", k.String(), lerr)
			return
		}
		mods, merr := luaModifiers(v)
		if merr != nil {
			err = fmt.Errorf("level %d: %w", lvl, merr)
			return
		}
		out[lvl] = mods
	})
	return out, err
}

func luaModifiers(lv lua.LValue) (map[string]Modifier, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("must be a table")
	}
	out := make(map[string]Modifier)
	var err error
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		stat := snakeCase(k.String())
		switch val := v.(type) {
		case lua.LNumber:
			m := FlatMod(float64(val))
			if !m.Finite() {
				err = fmt.Errorf("%s: modifier %v is not finite", stat, m.Amount)
				return
			}
			out[stat] = m
		case lua.LString:
			m, perr := ParseModifier(string(val))
			if perr != nil {
				err = fmt.Errorf("%s: %w", stat, perr)
				return
			}
			out[stat] = m
		default:
			err = fmt.Errorf("%s: unsupported modifier type %s", stat, v.Type().String())
		}
	})
	return out, err
}

func luaString(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func luaNumber(t *lua.LTable, key string) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// luaInt converts an integral Lua number. A missing value reads as 0.
func luaInt(lv lua.LValue) (int, error) {
	if lv == lua.LNil {
		return 0, nil
	}
	n, ok := lv.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("must be a number, got %s", lv.Type().String())
	}
	f := float64(n)
	if f != math.Trunc(f) || !isFinite(f) {
		return 0, fmt.Errorf("must be a whole number, got %v", f)
	}
	return int(f), nil
}

// snakeCase converts "projectileSpeed" to "projectile_speed".
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

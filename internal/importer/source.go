package importer

import "github.com/cory-johannsen/arena/internal/game/catalog"

// Source loads item definitions from a format-specific location.
//
// Precondition: path must exist and be in the format the Source expects.
// Postcondition: returns at least one ItemDef, or a non-nil error.
type Source interface {
	Load(path string) ([]*catalog.ItemDef, error)
}

// LuaSource reads the prototype's Lua item tables.
type LuaSource struct{}

// NewLuaSource returns a Source for Lua catalog files.
func NewLuaSource() *LuaSource { return &LuaSource{} }

// Load executes the Lua catalog at path and returns its validated items.
func (LuaSource) Load(path string) ([]*catalog.ItemDef, error) {
	return catalog.LoadLua(path)
}

// YAMLSource reads an existing YAML catalog directory, which lets Run
// normalise hand-edited files into one file per item.
type YAMLSource struct{}

// NewYAMLSource returns a Source for YAML catalog directories.
func NewYAMLSource() *YAMLSource { return &YAMLSource{} }

// Load parses every YAML file in the directory at path.
func (YAMLSource) Load(path string) ([]*catalog.ItemDef, error) {
	return catalog.LoadDirectory(path)
}

// SourceFor picks a Source by format name.
//
// Postcondition: returns a non-nil Source for "lua" or "yaml"; otherwise false.
func SourceFor(format string) (Source, bool) {
	switch format {
	case "lua":
		return NewLuaSource(), true
	case "yaml":
		return NewYAMLSource(), true
	}
	return nil, false
}

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadDirectory reads every *.yaml and *.yml file in dir, parses each YAML
// document as an ItemDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadDirectory(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDirectory: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDirectory: cannot read file %q: %w", path, err)
		}
		defs, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("LoadDirectory: %q: %w", path, err)
		}
		items = append(items, defs...)
	}
	return items, nil
}

// LoadFromBytes parses one or more YAML documents as ItemDefs and validates
// each. Unknown fields are rejected.
//
// Postcondition: returns at least one valid ItemDef or a non-nil error.
func LoadFromBytes(data []byte) ([]*ItemDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var defs []*ItemDef
	for {
		var d ItemDef
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot parse item: %w", err)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, &d)
	}
	if len(defs) == 0 {
		return nil, errors.New("no item documents found")
	}
	return defs, nil
}

// Load builds a Registry from the YAML directory dir and, when luaPath is
// non-empty, the Lua catalog at luaPath.
//
// Precondition: dir is a readable directory.
// Postcondition: returns a Registry containing every item, or an error on any
// malformed entry or duplicate ID. A catalog that fails here must not be used.
func Load(dir, luaPath string) (*Registry, error) {
	defs, err := LoadDirectory(dir)
	if err != nil {
		return nil, err
	}
	if luaPath != "" {
		luaDefs, err := LoadLua(luaPath)
		if err != nil {
			return nil, err
		}
		defs = append(defs, luaDefs...)
	}
	reg := NewRegistry()
	if err := reg.RegisterAll(defs); err != nil {
		return nil, err
	}
	return reg, nil
}

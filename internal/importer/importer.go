package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/catalog"
)

// Importer converts item content from a Source into the YAML catalog layout.
type Importer struct {
	source Source
	out    io.Writer
}

// New constructs an Importer backed by the given Source. Progress lines are
// written to out; pass io.Discard to silence them.
//
// Precondition: source and out must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, out io.Writer) *Importer {
	return &Importer{source: source, out: out}
}

// Run loads items from sourcePath, validates each, and writes them to
// outputDir as <item_id>.yaml. Once every file is written the whole output
// directory is reloaded as a catalog so that ID collisions with files already
// present are reported.
//
// Precondition: outputDir must exist or be creatable.
// Postcondition: one YAML file per item is written and the directory loads as
// a catalog, or an error is returned.
func (imp *Importer) Run(sourcePath, outputDir string) error {
	overall := time.Now()

	t0 := time.Now()
	defs, err := imp.source.Load(sourcePath)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}
	fmt.Fprintf(imp.out, "load    %d item(s) in %s\n", len(defs), time.Since(t0).Round(time.Millisecond))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	for _, def := range defs {
		data, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("serialising item %q: %w", def.ID, err)
		}

		// Validate output is loadable before writing.
		if _, err := catalog.LoadFromBytes(data); err != nil {
			return fmt.Errorf("item %q failed validation: %w", def.ID, err)
		}

		name := NameToID(def.ID)
		if name == "" {
			return fmt.Errorf("item %q has no usable file name", def.ID)
		}
		outPath := filepath.Join(outputDir, name+".yaml")
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("writing item %q to %s: %w", def.ID, outPath, err)
		}
		fmt.Fprintf(imp.out, "wrote   %s  (%s %s)\n", outPath, def.Rarity, def.Kind)
	}

	if _, err := catalog.Load(outputDir, ""); err != nil {
		return fmt.Errorf("output catalog is invalid: %w", err)
	}

	fmt.Fprintf(imp.out, "total   %s\n", time.Since(overall).Round(time.Millisecond))
	return nil
}

package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how a Modifier combines with a stat.
type Mode int

const (
	// Flat modifiers add Amount to the stat.
	Flat Mode = iota
	// Percent modifiers scale the stat by Amount percent.
	Percent
)

// String returns "flat" or "percent".
func (m Mode) String() string {
	if m == Percent {
		return "percent"
	}
	return "flat"
}

// Modifier is a parsed stat adjustment. It is built once at catalog load and
// never re-parsed at runtime.
//
// Invariant: Amount is finite.
type Modifier struct {
	Mode   Mode
	Amount float64
}

// FlatMod returns a flat Modifier of amount.
func FlatMod(amount float64) Modifier { return Modifier{Mode: Flat, Amount: amount} }

// PercentMod returns a percent Modifier of amount (15 means +15%).
func PercentMod(amount float64) Modifier { return Modifier{Mode: Percent, Amount: amount} }

// Finite reports whether the amount is neither NaN nor infinite.
func (m Modifier) Finite() bool { return isFinite(m.Amount) }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// ParseModifier parses strings of the form "+5", "-5", "10", "+15%" or "-10%".
//
// Precondition: none.
// Postcondition: Returns a Modifier with a finite Amount, or a descriptive error.
func ParseModifier(s string) (Modifier, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Modifier{}, errors.New("catalog: empty modifier")
	}
	mode := Flat
	num := raw
	if strings.HasSuffix(num, "%") {
		mode = Percent
		num = strings.TrimSpace(strings.TrimSuffix(num, "%"))
	}
	amount, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Modifier{}, fmt.Errorf("catalog: invalid modifier %q: %w", s, err)
	}
	if !isFinite(amount) {
		return Modifier{}, fmt.Errorf("catalog: modifier %q is not finite", s)
	}
	return Modifier{Mode: mode, Amount: amount}, nil
}

// MustParseModifier parses s and panics on error. Useful for test fixtures.
//
// Precondition: s must be a valid modifier string.
func MustParseModifier(s string) Modifier {
	m, err := ParseModifier(s)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// String renders the Modifier in the catalog's string form, e.g. "+5" or "-10%".
func (m Modifier) String() string {
	num := strconv.FormatFloat(m.Amount, 'f', -1, 64)
	if !strings.HasPrefix(num, "-") {
		num = "+" + num
	}
	if m.Mode == Percent {
		return num + "%"
	}
	return num
}

// UnmarshalYAML accepts either a modifier string or a bare number (flat).
func (m *Modifier) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: modifier must be a scalar", node.Line)
	}
	parsed, err := ParseModifier(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the Modifier as its string form.
func (m Modifier) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

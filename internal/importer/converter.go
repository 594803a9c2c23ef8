package importer

import "strings"

// NameToID converts a display name or item ID to a snake_case file stem.
// Spaces and hyphens become underscores, runs of underscores collapse, and
// every other character outside [a-z0-9] is dropped.
//
// Postcondition: result is lowercase, contains only [a-z0-9_], has no leading,
// trailing or doubled underscore, and NameToID(NameToID(s)) == NameToID(s).
func NameToID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ' || r == '-' || r == '_':
			pendingSep = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

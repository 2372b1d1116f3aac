package rbac

import "strings"

// officeAliases maps display-name variants onto canonical office keys.
// Keys are compared after upper-casing and trimming, so the table only
// needs entries whose canonical form differs from that normalization
// (accent variants, mostly).
var officeAliases = map[string]string{
	"MEDELLIN":       "MEDELLÍN",
	"OFICINA POLO":   "POLO CLUB",
	"EL NOGAL":       "NOGAL",
	"SEDE COQ":       "COQ",
	"BOGOTA KENNEDY": "KENNEDY",
}

// NormalizeOffice maps a raw office display name to its canonical key.
// Total and deterministic: unmapped names normalize to their upper-cased,
// trimmed form. Feeds directly into visibility decisions, so it never
// fails.
func NormalizeOffice(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	if canonical, ok := officeAliases[key]; ok {
		return canonical
	}
	return key
}

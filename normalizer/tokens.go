package normalizer

import (
	"strings"
	"unicode"
)

// NormalizeToken uppercases s and collapses every run of whitespace, hyphens and underscores into
// a single underscore, so "status-update", "Status Update" and "STATUS_UPDATE" compare equal.
func NormalizeToken(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

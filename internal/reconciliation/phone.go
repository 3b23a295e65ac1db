package reconciliation

import (
	"strings"
	"unicode"
)

// NormalizePhone reduces a Kenyan MSISDN to its local 0-prefixed form so that
// "+254712345678", "254712345678" and "0712345678" compare equal. Whitespace
// and dashes are dropped. The function is idempotent.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.TrimPrefix(b.String(), "+")
	if strings.HasPrefix(s, "254") && len(s) > 9 {
		s = "0" + s[3:]
	}
	return s
}

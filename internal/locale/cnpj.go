package locale

import (
	"fmt"
	"regexp"
	"strings"
)

// CNPJPattern matches a Brazilian company tax ID, punctuated or as 14 bare digits
var CNPJPattern = regexp.MustCompile(`(?:^|[^\d])(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})(?:[^\d]|$)`)

// FindCNPJ returns the first tax ID in s, if any
func FindCNPJ(s string) (string, bool) {
	m := CNPJPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LooksLikeCNPJ reports whether s is nothing but a tax ID
func LooksLikeCNPJ(s string) bool {
	id, ok := FindCNPJ(s)
	return ok && strings.TrimSpace(s) == id
}

// FormatCNPJ renders a tax ID as XX.XXX.XXX/XXXX-XX. Input that does not carry
// exactly 14 digits is returned trimmed and otherwise untouched.
func FormatCNPJ(s string) string {
	digits := onlyDigits(s)
	if len(digits) != 14 {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", digits[0:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

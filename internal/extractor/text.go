package extractor

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	hasLetter  = regexp.MustCompile(`\p{L}`)
)

// collapse trims s and squeezes whitespace runs into single spaces
func collapse(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// wordIndex finds keyword in folded text only where it starts a word and, when
// the keyword ends in a letter, where it also ends one. Returns -1 if absent.
func wordIndex(folded, keyword string) int {
	if keyword == "" {
		return -1
	}
	from := 0
	for from <= len(folded)-len(keyword) {
		i := strings.Index(folded[from:], keyword)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(keyword)
		startOK := i == 0 || !isWordByte(folded[i-1])
		endOK := end == len(folded) || !isWordByte(keyword[len(keyword)-1]) || !isWordByte(folded[end])
		if startOK && endOK {
			return i
		}
		from = i + 1
	}
	return -1
}

// containsWord reports whether any keyword occurs in folded as a whole word
func containsWord(folded string, keywords []string) bool {
	for _, k := range keywords {
		if wordIndex(folded, k) >= 0 {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 0x80 || b == '_' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
}

// snippet shortens s for warning messages
func snippet(s string, n int) string {
	r := []rune(collapse(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

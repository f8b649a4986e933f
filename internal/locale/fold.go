package locale

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newFolder returns a transformer that strips combining marks.
// transform.Chain keeps internal state, so every caller gets its own.
func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold lower-cases s, strips diacritics and collapses whitespace runs into a
// single space. "Número  do Pedido" becomes "numero do pedido".
func Fold(s string) string {
	folded, _ := FoldIndex(s)
	return folded
}

// FoldIndex folds s like Fold and also returns, for every byte of the folded
// string, the byte offset in s of the rune it came from. The offsets slice has
// one extra trailing entry equal to len(s), so offsets[i] is valid for any end
// index i of a match in the folded string.
func FoldIndex(s string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(s)+1)
	folder := newFolder()
	pendingSpace := false

	for i, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			offsets = append(offsets, i)
			pendingSpace = false
		}

		var piece string
		if r < utf8.RuneSelf {
			piece = string(unicode.ToLower(r))
		} else {
			folder.Reset()
			out, _, err := transform.String(folder, string(r))
			if err != nil {
				out = string(r)
			}
			piece = strings.ToLower(out)
		}
		b.WriteString(piece)
		for range len(piece) {
			offsets = append(offsets, i)
		}
	}

	offsets = append(offsets, len(s))
	return b.String(), offsets
}

// After returns the part of s that follows the first occurrence of keyword,
// matching diacritic and case insensitively. keyword must already be folded.
func After(s, keyword string) (string, bool) {
	folded, offsets := FoldIndex(s)
	idx := strings.Index(folded, keyword)
	if idx < 0 {
		return "", false
	}
	return s[offsets[idx+len(keyword)]:], true
}

// Before returns the part of s that precedes the first occurrence of keyword
func Before(s, keyword string) (string, bool) {
	folded, offsets := FoldIndex(s)
	idx := strings.Index(folded, keyword)
	if idx < 0 {
		return s, false
	}
	return s[:offsets[idx]], true
}

// ContainsAny reports whether folded contains any of the folded keywords
func ContainsAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// HasAnyPrefix reports whether folded starts with any of the folded keywords
func HasAnyPrefix(folded string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.HasPrefix(folded, k) {
			return true
		}
	}
	return false
}

// FoldAll folds every entry of list
func FoldAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if f := Fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

package search

import (
	"strings"
	"unicode"
)

// text is one searchable field split into runes, with a case-folded copy and the
// word-start flags used for scoring. Positions index runes, not bytes.
type text struct {
	lower  []rune
	starts []bool
}

func newText(s string) text {
	orig := []rune(s)
	t := text{
		lower:  make([]rune, len(orig)),
		starts: make([]bool, len(orig)),
	}
	for i, r := range orig {
		t.lower[i] = unicode.ToLower(r)
		t.starts[i] = isWordStart(orig, i)
	}
	return t
}

// normalizeQuery folds case and trims surrounding whitespace.
func normalizeQuery(q string) []rune {
	q = strings.TrimSpace(q)
	out := []rune(q)
	for i, r := range out {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// isWordStart reports whether the rune at pos begins a word:
//   - the first rune
//   - after a separator (anything that is not a letter or digit)
//   - a camelCase hump (lower followed by upper)
//   - a letter following a digit
func isWordStart(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	cur, prev := runes[pos], runes[pos-1]
	if !isWordRune(cur) {
		return false
	}
	if !isWordRune(prev) {
		return true
	}
	if unicode.IsLower(prev) && unicode.IsUpper(cur) {
		return true
	}
	return unicode.IsDigit(prev) && unicode.IsLetter(cur)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// indexRunes returns every offset where needle occurs in haystack.
func indexRunes(haystack, needle []rune) []int {
	var out []int
	n, m := len(haystack), len(needle)
outer:
	for i := 0; i+m <= n; i++ {
		for j := 0; j < m; j++ {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		out = append(out, i)
	}
	return out
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSubsequence reports whether q appears in order within t.
func isSubsequence(q, t []rune) bool {
	j := 0
	for i := 0; i < len(t) && j < len(q); i++ {
		if t[i] == q[j] {
			j++
		}
	}
	return j == len(q)
}

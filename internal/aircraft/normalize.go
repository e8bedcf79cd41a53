package aircraft

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

var folder = cases.Fold()

// maxNormalizePasses bounds the fixed-point loop in Normalize
const maxNormalizePasses = 4

// Normalize reduces a raw aircraft identifier to its comparison key: full-width
// forms are narrowed, case is folded and lowered, characters other than
// letters, digits and '+' are dropped, and whitespace runs collapse to one
// space. Case folding alone is not stable for every script (Cherokee folds to
// upper case), so the key is recomputed until it stops changing.
//
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	key := normalizeOnce(s)
	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizeOnce(key)
		if next == key {
			break
		}
		key = next
	}
	return key
}

func normalizeOnce(s string) string {
	s = strings.ToLower(folder.String(width.Fold.String(s)))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

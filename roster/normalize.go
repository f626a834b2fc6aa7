package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer produces name keys. The zero value strips whitespace and lowercases;
// NFKC additionally folds full-width and other compatibility forms.
type Normalizer struct {
	NFKC bool
}

// NormalizeName builds a name key without compatibility folding.
func NormalizeName(name string) string {
	return Normalizer{}.Normalize(name)
}

// Normalize is pure and idempotent: Normalize(Normalize(s)) == Normalize(s).
func (n Normalizer) Normalize(name string) string {
	if name == "" {
		return ""
	}
	key := n.pass(name)
	// Lowercasing can reopen a compatibility form, settle it.
	for i := 0; n.NFKC && i < 3 && !norm.NFKC.IsNormalString(key); i++ {
		key = n.pass(key)
	}
	return key
}

func (n Normalizer) pass(in string) string {
	if n.NFKC {
		in = norm.NFKC.String(in)
	}
	in = strings.Map(func(r rune) rune {
		if isNameSpace(r) {
			return -1
		}
		return r
	}, in)
	// Casers carry state and are not safe to share between goroutines.
	return cases.Lower(language.Und).String(in)
}

func isNameSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

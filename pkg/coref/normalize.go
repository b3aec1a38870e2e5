package coref

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s after NFC composition so that precomposed and
// decomposed spellings of the same word compare equal. A Caser keeps
// state, so one is built per call.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// joinWords concatenates token texts with single spaces.
func joinWords(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Word)
	}
	return b.String()
}

package rules

import (
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
)

var wordsInclusionStopWords = []string{
	"the", "this", "mr.", "miss", "mrs.", "dr.", "ms.", "inc.", "ltd.", "corp.", "'s",
}

var locationModifiers = map[string]struct{}{
	"east": {}, "west": {}, "north": {}, "south": {},
	"eastern": {}, "western": {}, "northern": {}, "southern": {},
	"northwestern": {}, "southwestern": {}, "northeastern": {}, "southeastern": {},
	"upper": {}, "lower": {},
}

var numberWords = map[string]struct{}{
	"one": {}, "two": {}, "three": {}, "four": {}, "five": {}, "six": {}, "seven": {},
	"eight": {}, "nine": {}, "ten": {}, "hundred": {}, "thousand": {}, "million": {}, "billion": {},
}

// isPronounLike reports pronominal mentions and spans that are pronouns.
func isPronounLike(m *coref.Mention, d *dict.Dictionaries) bool {
	return m.IsPronominal() || d.AllPronouns.Has(m.LowerSpan())
}

// possessiveEqual compares spans allowing a trailing " 's" on one side.
func possessiveEqual(a, b string) bool {
	return a == b || a == b+" 's" || b == a+" 's"
}

// ExactStringMatch reports whether some non-pronominal mention of c1
// matches some non-pronominal mention of c2 verbatim (case-insensitive,
// possessive tolerated). Any member of c1 in the role set vetoes the match.
func ExactStringMatch(doc *coref.Document, c1, c2 *coref.Cluster, d *dict.Dictionaries) bool {
	matched := false
	for _, m := range c1.Mentions {
		if doc.InRoleSet(m.ID) {
			return false
		}
		if isPronounLike(m, d) {
			continue
		}
		mSpan := m.LowerSpan()
		for _, a := range c2.Mentions {
			if isPronounLike(a, d) {
				continue
			}
			if possessiveEqual(mSpan, a.LowerSpan()) {
				matched = true
			}
		}
	}
	return matched
}

// RelaxedExactStringMatch compares the two spans after dropping any
// phrase that follows the head (a comma clause or a relative clause).
func RelaxedExactStringMatch(doc *coref.Document, m, a *coref.Mention, d *dict.Dictionaries) bool {
	if doc.InRoleSet(m.ID) {
		return false
	}
	if isPronounLike(m, d) || isPronounLike(a, d) {
		return false
	}
	mSpan, aSpan := m.RemovePhraseAfterHead(), a.RemovePhraseAfterHead()
	if mSpan == "" || aSpan == "" {
		return false
	}
	return possessiveEqual(mSpan, aSpan)
}

// HeadsAgree is the inclusion head match: m's head equals the head of
// some mention of the antecedent cluster.
func HeadsAgree(antCluster *coref.Cluster, m, a *coref.Mention, d *dict.Dictionaries) bool {
	if isPronounLike(m, d) || isPronounLike(a, d) {
		return false
	}
	for _, x := range antCluster.Mentions {
		if x.HeadString == m.HeadString {
			return true
		}
	}
	return false
}

// RelaxedHeadsAgree lets entities of one type match when one span's words
// are contained in the other's.
func RelaxedHeadsAgree(m, a *coref.Mention) bool {
	if m.IsPronominal() || a.IsPronominal() {
		return false
	}
	return m.HeadsAgree(a)
}

// WordsIncluded reports whether the non-stop words of c1, minus m's head,
// all occur in c2.
func WordsIncluded(c1, c2 *coref.Cluster, m *coref.Mention) bool {
	words := make(map[string]struct{}, len(c1.Words))
	for w := range c1.Words {
		words[w] = struct{}{}
	}
	for _, sw := range wordsInclusionStopWords {
		delete(words, sw)
	}
	delete(words, strings.ToLower(m.HeadString))
	for w := range words {
		if _, ok := c2.Words[w]; !ok {
			return false
		}
	}
	return true
}

// HaveIncompatibleModifier reports whether some pair of members sharing a
// head differ in their modifiers.
func HaveIncompatibleModifier(c1, c2 *coref.Cluster) bool {
	for _, m := range c1.Mentions {
		for _, a := range c2.Mentions {
			if IncompatibleModifier(m, a) {
				return true
			}
		}
	}
	return false
}

// IncompatibleModifier reports whether two same-headed mentions carry a
// location modifier or m has a noun, adjective, number or verb modifier a
// lacks.
func IncompatibleModifier(m, a *coref.Mention) bool {
	if !strings.EqualFold(m.HeadString, a.HeadString) {
		return false
	}
	mMods, ok := modifiers(m)
	if !ok {
		return true
	}
	aMods, ok := modifiers(a)
	if !ok {
		return true
	}
	for w := range mMods {
		if _, ok := aMods[w]; !ok {
			return true
		}
	}
	return false
}

// modifiers collects descriptive words of the span; ok is false when a
// location modifier is present.
func modifiers(m *coref.Mention) (map[string]struct{}, bool) {
	out := make(map[string]struct{})
	for _, w := range m.Words() {
		lw := strings.ToLower(w.Word)
		if _, loc := locationModifiers[lw]; loc {
			return nil, false
		}
		if strings.HasPrefix(w.POS, "N") || strings.HasPrefix(w.POS, "JJ") ||
			strings.HasPrefix(w.POS, "CD") || strings.HasPrefix(w.POS, "V") {
			out[lw] = struct{}{}
		}
	}
	return out, true
}

// SameProperHeadLastWord checks whether some member pair shares a proper
// head ending its span without both carrying extra proper premodifiers.
func SameProperHeadLastWord(c1, c2 *coref.Cluster) bool {
	for _, m := range c1.Mentions {
		for _, a := range c2.Mentions {
			if sameProperHeadLastWord(a, m) {
				return true
			}
		}
	}
	return false
}

func sameProperHeadLastWord(a, m *coref.Mention) bool {
	if !strings.EqualFold(m.HeadString, a.HeadString) ||
		!strings.HasPrefix(m.HeadToken().POS, "NNP") ||
		!strings.HasPrefix(a.HeadToken().POS, "NNP") {
		return false
	}
	if !strings.HasSuffix(strings.ToLower(m.RemovePhraseAfterHead()), m.HeadString) ||
		!strings.HasSuffix(strings.ToLower(a.RemovePhraseAfterHead()), a.HeadString) {
		return false
	}
	mProper, aProper := properPremodifiers(m), properPremodifiers(a)
	return !(hasExtraString(mProper, aProper, nil) && hasExtraString(aProper, mProper, nil))
}

func properPremodifiers(m *coref.Mention) map[string]struct{} {
	out := make(map[string]struct{})
	if m.Sentence == nil {
		return out
	}
	for i := m.Start; i < m.HeadIndex && i < len(m.Sentence.Tokens); i++ {
		if t := m.Sentence.Tokens[i]; strings.HasPrefix(t.POS, "NNP") {
			out[t.Word] = struct{}{}
		}
	}
	return out
}

func properNouns(m *coref.Mention) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range m.Words() {
		if strings.HasPrefix(t.POS, "NNP") {
			out[t.Word] = struct{}{}
		}
	}
	return out
}

// hasExtraString reports whether from holds a word absent from other and
// not excepted (compared lower-cased).
func hasExtraString(from, other map[string]struct{}, except dict.Set) bool {
	for w := range from {
		if _, ok := other[w]; ok {
			continue
		}
		if except.Has(strings.ToLower(w)) {
			continue
		}
		return true
	}
	return false
}

// HaveExtraProperNoun reports whether both mentions contain a proper noun
// the other lacks, ignoring the excepted words.
func HaveExtraProperNoun(m, a *coref.Mention, except dict.Set) bool {
	mp, ap := properNouns(m), properNouns(a)
	return hasExtraString(mp, ap, except) && hasExtraString(ap, mp, except)
}

// HaveDifferentLocation reports a state/country clash, a location
// modifier on either side, or LOCATION words on both sides missing from
// the other span.
func HaveDifferentLocation(m, a *coref.Mention, d *dict.Dictionaries) bool {
	if d.IsState(m.SpanString()) &&
		(strings.EqualFold(a.HeadString, "country") || strings.EqualFold(a.HeadString, "nation")) {
		return true
	}
	mLoc, ok := locations(m)
	if !ok {
		return true
	}
	aLoc, ok := locations(a)
	if !ok {
		return true
	}
	mSpan, aSpan := m.LowerSpan(), a.LowerSpan()
	mExtra, aExtra := false, false
	for _, s := range mLoc {
		if !strings.Contains(aSpan, s) {
			mExtra = true
		}
	}
	for _, s := range aLoc {
		if !strings.Contains(mSpan, s) {
			aExtra = true
		}
	}
	return mExtra && aExtra
}

// locations lists lower-cased LOCATION words; ok is false when a location
// modifier is present.
func locations(m *coref.Mention) ([]string, bool) {
	var out []string
	for _, w := range m.Words() {
		lw := strings.ToLower(w.Word)
		if _, loc := locationModifiers[lw]; loc {
			return nil, false
		}
		if w.NER == "LOCATION" {
			out = append(out, lw)
		}
	}
	return out, true
}

// NumberInLaterMention reports whether m introduces a number absent from
// the antecedent.
func NumberInLaterMention(m, a *coref.Mention) bool {
	antWords := make(map[string]struct{})
	for _, w := range a.Words() {
		antWords[strings.ToLower(w.Word)] = struct{}{}
	}
	for _, w := range m.Words() {
		lw := strings.ToLower(w.Word)
		if _, ok := antWords[lw]; ok {
			continue
		}
		if _, num := numberWords[lw]; num || w.POS == "CD" {
			return true
		}
	}
	return false
}

// TokenDistance reports whether two same-sentence mentions start fewer
// than six tokens apart.
func TokenDistance(m, a *coref.Mention) bool {
	return m.SentNum == a.SentNum && m.Start-a.Start < 6
}

// IsAcronym reports whether one token sequence abbreviates the other. When
// both have more than one token neither can be an acronym. The acronym
// must be all capitals, equal to the capitals of the longer side in order,
// and must not appear inside any of the longer side's tokens.
func IsAcronym(first, second []string) bool {
	if len(first) > 1 && len(second) > 1 {
		return false
	}
	if len(first) == 0 && len(second) == 0 {
		return false
	}
	var longer, shorter []string
	if len(first) == len(second) {
		if len(first[0]) > len(second[0]) {
			longer, shorter = first, second
		} else {
			longer, shorter = second, first
		}
	} else if len(first) > len(second) {
		longer, shorter = first, second
	} else {
		longer, shorter = second, first
	}
	if len(shorter) == 0 {
		return false
	}
	acronym := shorter[0]
	for i := 0; i < len(acronym); i++ {
		if acronym[i] < 'A' || acronym[i] > 'Z' {
			return false
		}
	}
	pos := 0
	for _, w := range longer {
		for i := 0; i < len(w); i++ {
			if w[i] < 'A' || w[i] > 'Z' {
				continue
			}
			if pos >= len(acronym) || acronym[pos] != w[i] {
				return false
			}
			pos++
		}
	}
	if pos != len(acronym) {
		return false
	}
	for _, w := range longer {
		if strings.Contains(w, acronym) {
			return false
		}
	}
	return true
}

func spanWords(m *coref.Mention) []string {
	toks := m.Words()
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Word
	}
	return out
}

// EntityIsAcronym checks every non-pronominal member pair of two clusters
// for an acronym relation. The verdict is cached on the document by
// cluster-id pair.
func EntityIsAcronym(doc *coref.Document, c1, c2 *coref.Cluster) bool {
	if v, ok := doc.AcronymDecision(c1.ID, c2.ID); ok {
		return v
	}
	found := false
	for _, m := range c1.Mentions {
		if m.IsPronominal() {
			continue
		}
		for _, a := range c2.Mentions {
			if IsAcronym(spanWords(m), spanWords(a)) {
				found = true
			}
		}
	}
	doc.SetAcronymDecision(c1.ID, c2.ID, found)
	return found
}

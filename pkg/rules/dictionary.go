package rules

import (
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
)

// Coreference dictionary thresholds.
const (
	// PMIThreshold is the minimum PMI for a pair above the column frequency
	// but below its high-frequency mark.
	PMIThreshold = 0.18

	// ContextRankThreshold is the worst signature rank still counted as
	// associated.
	ContextRankThreshold = 10

	noRank = 100000
)

// highFrequency is indexed by dictionary column (1-based).
var highFrequency = [5]float64{0, 75, 16, 16, 16}

// CorefDictionary reports whether the column patterns of m and a co-occur
// often enough in the coreference dictionary. A pair above the column's
// high-frequency mark always counts; a pair above freq counts when its PMI
// exceeds PMIThreshold or is unknown.
func CorefDictionary(m, a *coref.Mention, d *dict.Dictionaries, column int, freq float64) bool {
	if column < 1 || column > 4 {
		return false
	}
	mp := strings.ToLower(m.SplitPattern()[column-1])
	ap := strings.ToLower(a.SplitPattern()[column-1])
	high := highFrequency[column]
	if d.PairCount(column, mp, ap) > high || d.PairCount(column, ap, mp) > high {
		return true
	}
	for _, p := range [2][2]string{{mp, ap}, {ap, mp}} {
		if d.PairCount(column, p[0], p[1]) <= freq {
			continue
		}
		pmi, ok := d.PairPMI(p[0], p[1])
		if !ok || pmi > PMIThreshold {
			return true
		}
	}
	return false
}

// ClusterAllCorefDictionary requires every non-pronominal pair with
// distinct head lemmas to pass CorefDictionary, and at least one such pair
// to exist.
func ClusterAllCorefDictionary(c1, c2 *coref.Cluster, d *dict.Dictionaries, column int, freq float64) bool {
	ret := false
	for _, m := range c1.Mentions {
		if m.IsPronominal() {
			continue
		}
		for _, a := range c2.Mentions {
			if a.IsPronominal() || m.HeadToken().LemmaOrWord() == a.HeadToken().LemmaOrWord() {
				continue
			}
			if !CorefDictionary(m, a, d, column, freq) {
				return false
			}
			ret = true
		}
	}
	return ret
}

// isContextOverlapping reports shared entity context (or heads) between the
// sentences of two mentions.
func isContextOverlapping(m, a *coref.Mention) bool {
	ctx := make(map[string]struct{})
	ctx[m.HeadString] = struct{}{}
	for _, w := range m.Context() {
		ctx[w] = struct{}{}
	}
	if _, ok := ctx[a.HeadString]; ok {
		return true
	}
	for _, w := range a.Context() {
		if _, ok := ctx[w]; ok {
			return true
		}
	}
	return false
}

// ContextIncompatible reports whether the entity context around m is not
// associated with the proper antecedent a in the signature tables. The
// premodifier context is preferred over the sentence context.
func ContextIncompatible(m, a *coref.Mention, d *dict.Dictionaries) bool {
	ctx := m.PremodifierContext()
	if len(ctx) == 0 {
		ctx = m.Context()
	}
	return contextIncompatible(m, a, d, ctx)
}

// SentenceContextIncompatible is ContextIncompatible over the sentence
// context only.
func SentenceContextIncompatible(m, a *coref.Mention, d *dict.Dictionaries) bool {
	return contextIncompatible(m, a, d, m.Context())
}

func contextIncompatible(m, a *coref.Mention, d *dict.Dictionaries, ctx []string) bool {
	antHead := a.HeadString
	if a.Type != coref.Proper || a.SentNum == m.SentNum ||
		isContextOverlapping(a, m) || !d.HasSignature(antHead) {
		return false
	}
	if len(ctx) == 0 {
		return false
	}
	highest := noRank
	for _, w := range ctx {
		if r, ok := d.SignatureRank(antHead, w); ok && r < highest {
			highest = r
		}
		if r, ok := d.SignatureRank(w, antHead); ok && r < highest {
			highest = r
		}
	}
	return highest > ContextRankThreshold
}

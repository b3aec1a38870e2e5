// Package rules is the linguistic predicate library consulted by the
// sieves. Every predicate is a pure function of its mentions, clusters and
// dictionaries, except that a few read or fill the caches owned by the
// Document (acronym decisions, role set, speaker pairs).
//
// Predicates never fail: missing optional data such as a parse tree or a
// speaker annotation makes a predicate report "not satisfied".
package rules

import (
	"github.com/orneryd/corefsieve/pkg/coref"
)

// extra reports whether from holds a non-sentinel value absent from other.
// It is false whenever other contains a sentinel: an uncertain side never
// makes the other side's values extra.
func extra[T comparable](from, other map[T]struct{}, sentinels ...T) bool {
	for _, s := range sentinels {
		if _, ok := other[s]; ok {
			return false
		}
	}
next:
	for v := range from {
		for _, s := range sentinels {
			if v == s {
				continue next
			}
		}
		if _, ok := other[v]; !ok {
			return true
		}
	}
	return false
}

// disagree is true only when both sides carry an exclusive value.
func disagree[T comparable](a, b map[T]struct{}, sentinels ...T) bool {
	return extra(a, b, sentinels...) && extra(b, a, sentinels...)
}

// AttributesAgree checks number, gender, animacy and NER type of two
// clusters. An attribute disagrees only if each cluster has a known value
// the other lacks. Gender is skipped when ignoreGender is set, which is
// used for languages without grammatical gender on pronouns.
func AttributesAgree(c1, c2 *coref.Cluster, ignoreGender bool) bool {
	if disagree(c1.Numbers, c2.Numbers, coref.UnknownNumber) {
		return false
	}
	if !ignoreGender && disagree(c1.Genders, c2.Genders, coref.UnknownGender) {
		return false
	}
	if disagree(c1.Animacies, c2.Animacies, coref.UnknownAnimacy) {
		return false
	}
	if disagree(c1.NERs, c2.NERs, coref.NoNER, "MISC") {
		return false
	}
	return true
}

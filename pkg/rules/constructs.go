package rules

import (
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
)

// IsApposition reports an appositive link between m and a, provided the
// clusters agree and the pair is not two names or a location.
func IsApposition(c1, c2 *coref.Cluster, m, a *coref.Mention, ignoreGender bool) bool {
	if m.Type == coref.Proper && a.Type == coref.Proper {
		return false
	}
	if m.NamedEntity() == "LOCATION" {
		return false
	}
	return AttributesAgree(c1, c2, ignoreGender) && m.IsApposition(a)
}

// IsPredicateNominatives reports a copular link ("X is Y") between two
// non-nested mentions of agreeing clusters.
func IsPredicateNominatives(c1, c2 *coref.Cluster, m, a *coref.Mention, ignoreGender bool) bool {
	if !AttributesAgree(c1, c2, ignoreGender) {
		return false
	}
	if m.SameSentence(a) &&
		((m.Start <= a.Start && m.End >= a.End) || (m.Start >= a.Start && m.End <= a.End)) {
		return false
	}
	return m.IsPredicateNominative(a)
}

// IsRelativePronoun reports whether either mention is the relative pronoun
// of the other.
func IsRelativePronoun(m, a *coref.Mention) bool {
	return m.IsRelativePronoun(a) || a.IsRelativePronoun(m)
}

func demonymKey(s string) string {
	s = strings.TrimPrefix(s, "the ")
	return strings.TrimSuffix(s, ".")
}

// IsDemonym reports whether one span is a demonym of the other ("China"
// and "Chinese").
func IsDemonym(m, a *coref.Mention, d *dict.Dictionaries) bool {
	ms, as := demonymKey(m.LowerSpan()), demonymKey(a.LowerSpan())
	for _, dn := range d.DemonymsOf(ms) {
		if dn == as {
			return true
		}
	}
	for _, dn := range d.DemonymsOf(as) {
		if dn == ms {
			return true
		}
	}
	return false
}

// IsRoleAppositive reports whether role is a role noun phrase opening the
// name m, as "President" in "President Obama".
func IsRoleAppositive(role, m *coref.Mention, d *dict.Dictionaries) bool {
	roleSpan := role.SpanString()
	roleLower := strings.ToLower(roleSpan)
	if role.IsPronominal() || d.AllPronouns.Has(roleLower) {
		return false
	}
	if !personOrNone(role) || !personOrNone(m) {
		return false
	}
	mSpan := m.SpanString()
	if !role.SameSentence(m) || !strings.HasPrefix(mSpan, roleSpan) {
		return false
	}
	if strings.Contains(mSpan, "'") || strings.Contains(mSpan, " and ") {
		return false
	}
	if !role.AnimaciesAgree(m) || role.Animacy == coref.Inanimate ||
		role.Gender == coref.Neutral || m.Gender == coref.Neutral ||
		!role.NumbersAgree(m) {
		return false
	}
	if d.DemonymSet.Has(roleLower) || d.DemonymSet.Has(strings.ToLower(mSpan)) {
		return false
	}
	return true
}

func personOrNone(m *coref.Mention) bool {
	ne := m.NamedEntity()
	return strings.HasPrefix(ne, "PER") || ne == coref.NoNER
}

// RoleAppositive checks the role appositive relation in both directions
// between agreeing clusters.
func RoleAppositive(c1, c2 *coref.Cluster, m, a *coref.Mention, d *dict.Dictionaries, ignoreGender bool) bool {
	if !AttributesAgree(c1, c2, ignoreGender) {
		return false
	}
	return IsRoleAppositive(m, a, d) || IsRoleAppositive(a, m, d)
}

// IWithinI reports one mention nested in the other without an apposition,
// relative pronoun or role appositive licensing the nesting.
func IWithinI(m, a *coref.Mention, d *dict.Dictionaries) bool {
	if m.IsApposition(a) || a.IsApposition(m) ||
		IsRelativePronoun(m, a) ||
		IsRoleAppositive(m, a, d) || IsRoleAppositive(a, m, d) {
		return false
	}
	return m.IncludedIn(a) || a.IncludedIn(m)
}

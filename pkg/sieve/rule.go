package sieve

import (
	"fmt"
	"sort"
	"strings"
)

// Rule names one step of the decision cascade. It is reported in
// Decision.Rule so callers can see which rule settled a pair.
type Rule int

const (
	RuleNone Rule = iota

	// Hard gates.
	RuleIncompatible
	RulePronounDistance
	RuleThisDistance
	RuleGenericYou
	RuleNested

	// Discourse.
	RuleDiscourseII
	RuleDiscourseSpeakerI
	RuleDiscourseISpeaker
	RuleDiscourseYouYou
	RuleDiscourseAdjacentIYou
	RuleDiscourseReflexive
	RuleSpeakerClash
	RuleUtteranceClash
	RuleSubjectObject

	// Matching.
	RuleIWithinI
	RuleExactString
	RuleNameMatch
	RuleRelaxedExactString
	RuleApposition
	RulePredicateNominative
	RuleAcronym
	RuleRelativePronoun
	RuleDemonym
	RuleRoleApposition
	RuleInclusionHead
	RuleRelaxedHead

	// Overrides.
	RuleWordsInclusion
	RuleIncompatibleModifier
	RuleProperHeadLastWord
	RuleAttributesAgree
	RuleDifferentLocation
	RuleNumberInMention
	RuleDistance

	RuleCorefDict
	RulePronoun
	RuleChineseHead

	// RuleDiscourse enables the whole discourse group in a RuleSet.
	RuleDiscourse

	ruleCount
)

var ruleNames = [ruleCount]string{
	RuleNone:                  "none",
	RuleIncompatible:          "incompatible",
	RulePronounDistance:       "pronoun-distance",
	RuleThisDistance:          "this-distance",
	RuleGenericYou:            "generic-you",
	RuleNested:                "nested",
	RuleDiscourseII:           "discourse-i-i",
	RuleDiscourseSpeakerI:     "discourse-speaker-i",
	RuleDiscourseISpeaker:     "discourse-i-speaker",
	RuleDiscourseYouYou:       "discourse-you-you",
	RuleDiscourseAdjacentIYou: "discourse-adjacent-i-you",
	RuleDiscourseReflexive:    "discourse-reflexive",
	RuleSpeakerClash:          "speaker-clash",
	RuleUtteranceClash:        "utterance-clash",
	RuleSubjectObject:         "subject-object",
	RuleIWithinI:              "i-within-i",
	RuleExactString:           "exact-string",
	RuleNameMatch:             "name-match",
	RuleRelaxedExactString:    "relaxed-exact-string",
	RuleApposition:            "apposition",
	RulePredicateNominative:   "predicate-nominative",
	RuleAcronym:               "acronym",
	RuleRelativePronoun:       "relative-pronoun",
	RuleDemonym:               "demonym",
	RuleRoleApposition:        "role-apposition",
	RuleInclusionHead:         "inclusion-head",
	RuleRelaxedHead:           "relaxed-head",
	RuleWordsInclusion:        "words-inclusion",
	RuleIncompatibleModifier:  "incompatible-modifier",
	RuleProperHeadLastWord:    "proper-head-last-word",
	RuleAttributesAgree:       "attributes-agree",
	RuleDifferentLocation:     "different-location",
	RuleNumberInMention:       "number-in-mention",
	RuleDistance:              "distance",
	RuleCorefDict:             "coref-dict",
	RulePronoun:               "pronoun",
	RuleChineseHead:           "chinese-head",
	RuleDiscourse:             "discourse",
}

func (r Rule) String() string {
	if r < 0 || r >= ruleCount {
		return fmt.Sprintf("Rule(%d)", int(r))
	}
	return ruleNames[r]
}

// ParseRule resolves a rule name as printed by String.
func ParseRule(name string) (Rule, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range ruleNames {
		if n == name && Rule(i) != RuleNone {
			return Rule(i), nil
		}
	}
	return RuleNone, fmt.Errorf("%w: %q", ErrUnknownRule, name)
}

// RuleSet is the set of optional rules a sieve enables. The hard gates
// that apply to every sieve are not part of it.
type RuleSet uint64

// NewRuleSet builds a set from rules.
func NewRuleSet(rules ...Rule) RuleSet {
	var s RuleSet
	for _, r := range rules {
		s |= 1 << uint(r)
	}
	return s
}

// ParseRuleSet builds a set from rule names.
func ParseRuleSet(names []string) (RuleSet, error) {
	var s RuleSet
	for _, n := range names {
		r, err := ParseRule(n)
		if err != nil {
			return 0, err
		}
		s |= 1 << uint(r)
	}
	return s, nil
}

// Has reports whether r is enabled.
func (s RuleSet) Has(r Rule) bool { return s&(1<<uint(r)) != 0 }

// Rules lists the enabled rules in cascade order.
func (s RuleSet) Rules() []Rule {
	var out []Rule
	for r := Rule(1); r < ruleCount; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RuleSet) String() string {
	rules := s.Rules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.String()
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

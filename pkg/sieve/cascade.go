package sieve

import (
	"strings"
	"unicode"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/rules"
)

// Compile turns an enabled rule set into the ordered cascade. Hard gates
// come first and apply to every sieve; then discourse rules, match rules,
// overrides, the dictionary rule, the pronoun rule and the Chinese head
// match, in that order.
func Compile(rs RuleSet) []Step {
	steps := []Step{{Rule: RuleIncompatible, Effect: Reject, When: incompatibleClusters}}
	if rs.Has(RulePronoun) {
		steps = append(steps, Step{Rule: RulePronounDistance, Effect: Reject, When: pronounTooFar})
	}
	steps = append(steps,
		Step{Rule: RuleThisDistance, Effect: Reject, When: thisTooFar},
		Step{Rule: RuleGenericYou, Effect: Reject, When: genericYou},
		Step{Rule: RuleNested, Effect: Reject, When: nested},
	)

	if rs.Has(RuleDiscourse) {
		steps = append(steps,
			Step{Rule: RuleDiscourseII, Effect: Accept, When: sameSpeakerI},
			Step{Rule: RuleDiscourseSpeakerI, Effect: Gate, Decide: speakerThenI},
			Step{Rule: RuleDiscourseISpeaker, Effect: Gate, Decide: iThenSpeaker},
			Step{Rule: RuleDiscourseYouYou, Effect: Accept, When: sameSpeakerYou},
			Step{Rule: RuleDiscourseAdjacentIYou, Effect: Accept, When: adjacentIYou},
			Step{Rule: RuleDiscourseReflexive, Effect: Accept, When: reflexive},
		)
	}

	// The speaker and role clashes only run for sieves without the
	// string-identity rules.
	if !rs.Has(RuleExactString) && !rs.Has(RuleRelaxedExactString) &&
		!rs.Has(RuleApposition) && !rs.Has(RuleWordsInclusion) {
		steps = append(steps,
			Step{Rule: RuleSpeakerClash, Effect: Gate, Decide: speakerClash},
			Step{Rule: RuleSubjectObject, Effect: Gate, Decide: articleSubjectObject},
		)
	}

	add := func(r Rule, e Effect, when func(*Context) bool) {
		if rs.Has(r) {
			steps = append(steps, Step{Rule: r, Effect: e, When: when})
		}
	}
	add(RuleIWithinI, RejectIncompatible, iWithinI)
	add(RuleExactString, Accept, exactString)
	add(RuleNameMatch, Tentative, nameMatch)
	add(RuleRelaxedExactString, Accept, relaxedExactString)
	add(RuleApposition, Accept, apposition)
	add(RulePredicateNominative, Accept, predicateNominative)
	add(RuleAcronym, Accept, acronym)
	add(RuleRelativePronoun, Accept, relativePronoun)
	add(RuleDemonym, Accept, demonym)
	if rs.Has(RuleRoleApposition) {
		steps = append(steps, Step{Rule: RuleRoleApposition, Effect: Gate, Decide: roleApposition})
	}
	add(RuleInclusionHead, Tentative, inclusionHead)
	add(RuleRelaxedHead, Tentative, relaxedHead)

	add(RuleWordsInclusion, Veto, wordsNotIncluded)
	add(RuleIncompatibleModifier, Veto, incompatibleModifier)
	add(RuleProperHeadLastWord, Veto, properHeadMismatch)
	add(RuleAttributesAgree, Reject, attributesDisagree)
	add(RuleDifferentLocation, Reject, differentLocation)
	add(RuleNumberInMention, Reject, numberInMention)
	add(RuleDistance, Reject, tooClose)

	if rs.Has(RuleCorefDict) {
		steps = append(steps, Step{Rule: RuleCorefDict, Effect: Gate, Decide: corefDict})
	}
	if rs.Has(RulePronoun) {
		steps = append(steps, Step{Rule: RulePronoun, Effect: Gate, Decide: pronoun})
	}
	add(RuleChineseHead, Accept, chineseHead)
	return steps
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ============================================================================
// Hard gates
// ============================================================================

func incompatibleClusters(c *Context) bool {
	return c.Doc.IsIncompatible(c.MentionCluster.ID, c.AntecedentCluster.ID)
}

func pronounTooFar(c *Context) bool {
	m := c.Mention
	return abs(m.SentNum-c.Antecedent.SentNum) > 3 && m.Person != coref.I && m.Person != coref.You
}

func thisTooFar(c *Context) bool {
	return c.Mention.LowerSpan() == "this" && abs(c.Mention.SentNum-c.Antecedent.SentNum) > 3
}

func genericYou(c *Context) bool {
	m, a := c.Mention, c.Antecedent
	if m.Person == coref.You && c.Doc.Type == coref.Article && m.Speaker == "PER0" {
		return true
	}
	return (a.Generic && a.Person == coref.You) || m.Generic
}

func nested(c *Context) bool {
	m, a := c.Mention, c.Antecedent
	return (m.InsideIn(a) || a.InsideIn(m)) && !c.Env.exemptGenre(c.Doc.Genre)
}

// ============================================================================
// Discourse
// ============================================================================

func firstPersonSingular(c *Context, m *coref.Mention) bool {
	return m.Number == coref.Singular && c.Dicts.FirstPersonPronouns.Has(m.LowerSpan())
}

func sameSpeakerI(c *Context) bool {
	return firstPersonSingular(c, c.Rep) && firstPersonSingular(c, c.Antecedent) &&
		rules.SameSpeaker(c.Doc, c.Rep, c.Antecedent)
}

func speakerThenI(c *Context) Outcome {
	m, a := c.Rep, c.Antecedent
	if !firstPersonSingular(c, m) || !rules.AntecedentIsMentionSpeaker(c.Doc, m, a) {
		return Pass
	}
	if m.SpeakerInfo == nil && a.SpeakerInfo != nil {
		m.SpeakerInfo = a.SpeakerInfo
	}
	return Merge
}

func iThenSpeaker(c *Context) Outcome {
	m, a := c.Rep, c.Antecedent
	if !firstPersonSingular(c, a) || !rules.AntecedentIsMentionSpeaker(c.Doc, a, m) {
		return Pass
	}
	if a.SpeakerInfo == nil && m.SpeakerInfo != nil {
		a.SpeakerInfo = m.SpeakerInfo
	}
	return Merge
}

func sameSpeakerYou(c *Context) bool {
	return c.Dicts.SecondPersonPronouns.Has(c.Rep.LowerSpan()) &&
		c.Dicts.SecondPersonPronouns.Has(c.Antecedent.LowerSpan()) &&
		rules.SameSpeaker(c.Doc, c.Rep, c.Antecedent)
}

func adjacentIYou(c *Context) bool {
	m, a := c.Rep, c.Antecedent
	pair := (m.Person == coref.I && a.Person == coref.You) || (m.Person == coref.You && a.Person == coref.I)
	return pair && m.Utterance-a.Utterance == 1 && c.Doc.Type == coref.Conversation
}

func reflexive(c *Context) bool {
	return c.Dicts.ReflexivePronouns.Has(c.Rep.HeadString) && rules.SubjectObject(c.Rep, c.Antecedent)
}

// speakerClash rejects cluster pairs where one member names the other's
// speaker, or where adjacent utterances of different speakers use the same
// first or second person.
func speakerClash(c *Context) Outcome {
	for _, m := range c.MentionCluster.Mentions {
		for _, a := range c.AntecedentCluster.Mentions {
			if m.Person != coref.I && a.Person != coref.I && rules.IsSpeaker(c.Doc, m, a) {
				return NoMergeIncompatible
			}
			if c.Doc.Type == coref.Article || abs(m.Utterance-a.Utterance) != 1 || rules.SameSpeaker(c.Doc, m, a) {
				continue
			}
			if m.Person == a.Person && (m.Person == coref.I || m.Person == coref.You || m.Person == coref.We) {
				c.fired = RuleUtteranceClash
				return NoMergeIncompatible
			}
		}
	}
	return Pass
}

func articleSubjectObject(c *Context) Outcome {
	if c.Doc.Type != coref.Article {
		return Pass
	}
	for _, m := range c.MentionCluster.Mentions {
		for _, a := range c.AntecedentCluster.Mentions {
			if rules.SubjectObject(m, a) {
				return NoMergeIncompatible
			}
		}
	}
	return Pass
}

// ============================================================================
// Matching
// ============================================================================

func iWithinI(c *Context) bool { return rules.IWithinI(c.Rep, c.Antecedent, c.Dicts) }

func exactString(c *Context) bool {
	return rules.ExactStringMatch(c.Doc, c.MentionCluster, c.AntecedentCluster, c.Dicts)
}

func nameMatch(c *Context) bool {
	nm := c.Env.NameMatcher
	if nm == nil {
		return false
	}
	for _, m := range c.MentionCluster.Mentions {
		for _, a := range c.AntecedentCluster.Mentions {
			if nm.Equivalent(m, a) {
				return true
			}
		}
	}
	return false
}

func relaxedExactString(c *Context) bool {
	return rules.RelaxedExactStringMatch(c.Doc, c.Rep, c.Antecedent, c.Dicts)
}

func apposition(c *Context) bool {
	return rules.IsApposition(c.MentionCluster, c.AntecedentCluster, c.Rep, c.Antecedent, c.Env.ignoreGender())
}

func predicateNominative(c *Context) bool {
	return rules.IsPredicateNominatives(c.MentionCluster, c.AntecedentCluster, c.Rep, c.Antecedent, c.Env.ignoreGender())
}

func acronym(c *Context) bool {
	return rules.EntityIsAcronym(c.Doc, c.MentionCluster, c.AntecedentCluster)
}

func relativePronoun(c *Context) bool { return rules.IsRelativePronoun(c.Rep, c.Antecedent) }

func demonym(c *Context) bool { return rules.IsDemonym(c.Rep, c.Antecedent, c.Dicts) }

// roleApposition matches role appositives. Chinese has no such
// construction and drops any pending match instead.
func roleApposition(c *Context) Outcome {
	if c.Env.Language == Chinese {
		return Withdraw
	}
	if rules.RoleAppositive(c.MentionCluster, c.AntecedentCluster, c.Rep, c.Antecedent, c.Dicts, false) {
		return Match
	}
	return Pass
}

func inclusionHead(c *Context) bool {
	return rules.HeadsAgree(c.AntecedentCluster, c.Rep, c.Antecedent, c.Dicts)
}

func relaxedHead(c *Context) bool { return rules.RelaxedHeadsAgree(c.Rep, c.Antecedent) }

// ============================================================================
// Overrides
// ============================================================================

func wordsNotIncluded(c *Context) bool {
	return !rules.WordsIncluded(c.MentionCluster, c.AntecedentCluster, c.Rep)
}

func incompatibleModifier(c *Context) bool {
	return rules.HaveIncompatibleModifier(c.MentionCluster, c.AntecedentCluster)
}

func properHeadMismatch(c *Context) bool {
	return !rules.SameProperHeadLastWord(c.MentionCluster, c.AntecedentCluster)
}

func attributesDisagree(c *Context) bool {
	return !rules.AttributesAgree(c.MentionCluster, c.AntecedentCluster, c.Env.ignoreGender())
}

// goldMismatch traces a rejected pair that the gold annotation links. It
// never changes the verdict.
func goldMismatch(c *Context, reason string) {
	if c.Rules.Has(RuleProperHeadLastWord) && c.tentative != RuleNone &&
		c.Rep.GoldClusterID >= 0 && c.Rep.GoldClusterID == c.Antecedent.GoldClusterID {
		c.Env.logger().Debug(reason, "doc", c.Doc.ID, "mention", c.Rep.ID, "antecedent", c.Antecedent.ID)
	}
}

func differentLocation(c *Context) bool {
	if !rules.HaveDifferentLocation(c.Rep, c.Antecedent, c.Dicts) {
		return false
	}
	goldMismatch(c, "different location rejects gold pair")
	return true
}

func numberInMention(c *Context) bool {
	if !rules.NumberInLaterMention(c.Rep, c.Antecedent) {
		return false
	}
	goldMismatch(c, "number in later mention rejects gold pair")
	return true
}

func tooClose(c *Context) bool { return rules.TokenDistance(c.Mention, c.Antecedent) }

// ============================================================================
// Dictionary, pronoun and Chinese head rules
// ============================================================================

func capitalAfterFirst(w string) bool {
	for i, r := range w {
		if i > 0 && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func firstLemma(m *coref.Mention) string {
	words := m.Words()
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(words[0].LemmaOrWord())
}

func corefDict(c *Context) Outcome {
	m, a := c.Mention, c.Antecedent
	mh, ah := m.HeadToken(), a.HeadToken()
	switch {
	case ah.LemmaOrWord() == mh.LemmaOrWord():
		return NoMerge
	case a.Type != coref.Proper && (strings.HasPrefix(mh.POS, "NNP") || capitalAfterFirst(mh.Word)):
		return NoMerge
	case ah.POS == "NNS" && mh.POS == "NNS":
		return NoMerge
	case c.Dicts.IndefinitePronouns.Has(firstLemma(a)) || c.Dicts.IndefinitePronouns.Has(firstLemma(m)):
		return NoMerge
	case a.IsCoordinated() || m.IsCoordinated():
		return NoMerge
	case rules.ContextIncompatible(m, a, c.Dicts), rules.SentenceContextIncompatible(m, a, c.Dicts):
		return NoMerge
	}
	if rules.ClusterAllCorefDictionary(c.MentionCluster, c.AntecedentCluster, c.Dicts, 1, 8) {
		return Merge
	}
	for col := 2; col <= 4; col++ {
		if rules.CorefDictionary(c.Rep, a, c.Dicts, col, 2) {
			return Merge
		}
	}
	return Pass
}

// pronoun resolves a pronominal representative, or the mention itself when
// it is a predicate nominative of the representative.
func pronoun(c *Context) Outcome {
	m := c.Rep
	if m.PredicateNominatives.Has(c.Mention.ID) {
		m = c.Mention
	}
	isPronoun := m.IsPronominal() || c.Dicts.AllPronouns.Has(m.LowerSpan())
	if !isPronoun || !rules.AttributesAgree(c.MentionCluster, c.AntecedentCluster, c.Env.ignoreGender()) {
		return Pass
	}
	if c.Dicts.DemonymSet.Has(c.Antecedent.LowerSpan()) && c.Dicts.NotOrganizationPRP.Has(m.HeadString) {
		return NoMergeIncompatible
	}
	if rules.ClusterPersonDisagree(c.Doc, c.MentionCluster, c.AntecedentCluster) {
		return NoMergeIncompatible
	}
	return Merge
}

func chineseHead(c *Context) bool {
	m, a := c.Mention, c.Antecedent
	return m.SameSentence(a) && m.HeadIndex == a.HeadIndex && m.InsideIn(a)
}

package sieve

import (
	"fmt"
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/rules"
)

// Kind enumerates the sieves.
type Kind int

const (
	KindMarkRole Kind = iota
	KindDiscourseMatch
	KindExactStringMatch
	KindRelaxedExactStringMatch
	KindPreciseConstructs
	KindNameMatch
	KindStrictHeadMatch1
	KindStrictHeadMatch2
	KindStrictHeadMatch3
	KindStrictHeadMatch4
	KindRelaxedHeadMatch
	KindPronounMatch
	KindCorefDictionaryMatch
	KindChineseHeadMatch
	KindCustom
	KindStatistical

	kindCount
)

var kindNames = [kindCount]string{
	KindMarkRole:                "MarkRole",
	KindDiscourseMatch:          "DiscourseMatch",
	KindExactStringMatch:        "ExactStringMatch",
	KindRelaxedExactStringMatch: "RelaxedExactStringMatch",
	KindPreciseConstructs:       "PreciseConstructs",
	KindNameMatch:               "NameMatch",
	KindStrictHeadMatch1:        "StrictHeadMatch1",
	KindStrictHeadMatch2:        "StrictHeadMatch2",
	KindStrictHeadMatch3:        "StrictHeadMatch3",
	KindStrictHeadMatch4:        "StrictHeadMatch4",
	KindRelaxedHeadMatch:        "RelaxedHeadMatch",
	KindPronounMatch:            "PronounMatch",
	KindCorefDictionaryMatch:    "CorefDictionaryMatch",
	KindChineseHeadMatch:        "ChineseHeadMatch",
	KindCustom:                  "Custom",
	KindStatistical:             "Statistical",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a sieve name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSieve, name)
}

// Rules returns the rule set of a deterministic kind. MarkRole, Custom and
// Statistical have none.
func (k Kind) Rules() RuleSet {
	switch k {
	case KindDiscourseMatch:
		return NewRuleSet(RuleDiscourse)
	case KindExactStringMatch:
		return NewRuleSet(RuleExactString)
	case KindRelaxedExactStringMatch:
		return NewRuleSet(RuleRelaxedExactString)
	case KindPreciseConstructs:
		return NewRuleSet(RuleApposition, RulePredicateNominative, RuleAcronym,
			RuleRelativePronoun, RuleRoleApposition, RuleDemonym)
	case KindNameMatch:
		return NewRuleSet(RuleIWithinI, RuleNameMatch)
	case KindStrictHeadMatch1:
		return NewRuleSet(RuleIWithinI, RuleInclusionHead, RuleIncompatibleModifier, RuleWordsInclusion)
	case KindStrictHeadMatch2:
		return NewRuleSet(RuleIWithinI, RuleInclusionHead, RuleWordsInclusion)
	case KindStrictHeadMatch3:
		return NewRuleSet(RuleIWithinI, RuleInclusionHead, RuleIncompatibleModifier)
	case KindStrictHeadMatch4:
		return NewRuleSet(RuleIWithinI, RuleInclusionHead, RuleProperHeadLastWord,
			RuleDifferentLocation, RuleNumberInMention)
	case KindRelaxedHeadMatch:
		return NewRuleSet(RuleIWithinI, RuleRelaxedHead, RuleWordsInclusion, RuleAttributesAgree)
	case KindPronounMatch:
		return NewRuleSet(RuleIWithinI, RulePronoun)
	case KindCorefDictionaryMatch:
		return NewRuleSet(RuleIWithinI, RuleDifferentLocation, RuleNumberInMention,
			RuleDistance, RuleAttributesAgree, RuleCorefDict)
	case KindChineseHeadMatch:
		return NewRuleSet(RuleChineseHead)
	}
	return 0
}

// Settings are the per-sieve search parameters.
type Settings struct {
	// MaxSentenceDistance bounds how many sentences back antecedents are
	// searched. Negative means unbounded.
	MaxSentenceDistance int
	// MentionTypes restricts which mentions look for antecedents; empty
	// allows all.
	MentionTypes []coref.MentionType
	// AntecedentTypes restricts which mentions may be antecedents; empty
	// allows all.
	AntecedentTypes []coref.MentionType
	// HonorFilter makes the sieve skip pairs outside Env.Filter.
	HonorFilter bool
}

func allowsType(types []coref.MentionType, t coref.MentionType) bool {
	if len(types) == 0 {
		return true
	}
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// Stats summarizes one sieve run over a document.
type Stats struct {
	Sieve  string
	Pairs  int
	Merges int
	// Fired counts decisions by the rule that settled them.
	Fired map[Rule]int
}

func newStats(name string) Stats { return Stats{Sieve: name, Fired: make(map[Rule]int)} }

// Sieve is one resolution pass. The set of implementations is closed:
// *RuleSieve, *MarkRole and *Statistical.
type Sieve interface {
	Name() string
	Kind() Kind
	// Resolve runs the pass over doc, merging clusters in place.
	Resolve(doc *coref.Document, env *Env) (Stats, error)

	sealed()
}

// ============================================================================
// Deterministic rule sieves
// ============================================================================

// RuleSieve merges a mention with the first candidate its cascade accepts.
type RuleSieve struct {
	name     string
	kind     Kind
	rules    RuleSet
	steps    []Step
	settings Settings
}

// NewRuleSieve builds one of the deterministic kinds.
func NewRuleSieve(kind Kind, s Settings) (*RuleSieve, error) {
	switch kind {
	case KindMarkRole, KindCustom, KindStatistical:
		return nil, fmt.Errorf("%w: %s is not a rule sieve", ErrUnknownSieve, kind)
	}
	if kind < 0 || kind >= kindCount {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSieve, kind)
	}
	rs := kind.Rules()
	return &RuleSieve{name: kind.String(), kind: kind, rules: rs, steps: Compile(rs), settings: s}, nil
}

// NewCustom builds a rule sieve from an arbitrary rule set.
func NewCustom(name string, rs RuleSet, s Settings) *RuleSieve {
	if name == "" {
		name = KindCustom.String()
	}
	return &RuleSieve{name: name, kind: KindCustom, rules: rs, steps: Compile(rs), settings: s}
}

func (s *RuleSieve) Name() string { return s.name }
func (s *RuleSieve) Kind() Kind   { return s.kind }
func (*RuleSieve) sealed()        {}

// RuleSet returns the enabled rules.
func (s *RuleSieve) RuleSet() RuleSet { return s.rules }

// Coreferent decides whether mention m, whose cluster is cm, corefers with
// antecedent a of cluster ca.
func (s *RuleSieve) Coreferent(doc *coref.Document, env *Env, cm, ca *coref.Cluster, m, a *coref.Mention) Decision {
	ctx := &Context{
		Doc:               doc,
		Dicts:             env.Dicts,
		Env:               env,
		MentionCluster:    cm,
		AntecedentCluster: ca,
		Rep:               cm.Representative,
		Mention:           m,
		Antecedent:        a,
		Rules:             s.rules,
	}
	return Run(s.steps, ctx)
}

// firstMentionOnly reports rule sets that only resolve the first mention
// of each cluster.
func firstMentionOnly(rs RuleSet) bool {
	for _, r := range []Rule{RuleExactString, RuleRoleApposition, RulePredicateNominative,
		RuleAcronym, RuleApposition, RuleRelativePronoun} {
		if rs.Has(r) {
			return false
		}
	}
	return true
}

// skipMention reports mentions unlikely to have an antecedent under rs:
// non-first cluster members for most rule sets, indefinite noun phrases
// and indefinite pronouns.
func skipMention(doc *coref.Document, env *Env, rs RuleSet, m *coref.Mention) bool {
	if firstMentionOnly(rs) && doc.ClusterOf(m).First != m {
		return true
	}
	span := m.LowerSpan()
	if len(m.Appositions) == 0 && len(m.PredicateNominatives) == 0 &&
		(strings.HasPrefix(span, "a ") || strings.HasPrefix(span, "an ")) &&
		!rs.Has(RuleExactString) {
		return true
	}
	indef := env.Dicts.IndefinitePronouns
	if indef.Has(span) {
		return true
	}
	for w := range indef {
		if strings.HasPrefix(span, w+" ") {
			return true
		}
	}
	return false
}

// Resolve implements Sieve.
func (s *RuleSieve) Resolve(doc *coref.Document, env *Env) (Stats, error) {
	stats := newStats(s.name)
	for sentI, ms := range doc.MentionsBySentence {
		for _, m := range ms {
			if !allowsType(s.settings.MentionTypes, m.Type) || skipMention(doc, env, s.rules, m) {
				continue
			}
			s.resolveMention(doc, env, sentI, m, &stats)
		}
	}
	return stats, nil
}

func (s *RuleSieve) resolveMention(doc *coref.Document, env *Env, sentI int, m *coref.Mention, stats *Stats) {
	for _, sentJ := range SentenceWindow(sentI, s.settings.MaxSentenceDistance) {
		for _, a := range OrderedAntecedents(doc, sentJ, m, env.Dicts) {
			if m.ClusterID == a.ClusterID {
				continue
			}
			if !allowsType(s.settings.AntecedentTypes, a.Type) {
				continue
			}
			if m.IsSingleton && a.IsSingleton {
				continue
			}
			if s.settings.HonorFilter && !env.Filter.Allows(m.ID, a.ID) {
				continue
			}
			stats.Pairs++
			dec := s.Coreferent(doc, env, doc.ClusterOf(m), doc.ClusterOf(a), m, a)
			if dec.Rule != RuleNone {
				stats.Fired[dec.Rule]++
			}
			if !dec.Merge {
				continue
			}
			survivor, _ := doc.Merge(m.ID, a.ID)
			stats.Merges++
			env.logger().Debug("merge", "sieve", s.name, "rule", dec.Rule,
				"mention", m.ID, "antecedent", a.ID, "cluster", survivor)
			return
		}
	}
}

// ============================================================================
// Role marking
// ============================================================================

// MarkRole records role appositives ("President" in "President Obama") so
// that later string-match sieves leave them alone. It never merges.
type MarkRole struct {
	settings Settings
}

// NewMarkRole builds the role-marking pass.
func NewMarkRole(s Settings) *MarkRole { return &MarkRole{settings: s} }

func (*MarkRole) Name() string { return KindMarkRole.String() }
func (*MarkRole) Kind() Kind   { return KindMarkRole }
func (*MarkRole) sealed()      {}

// Resolve implements Sieve. Mentions the rule sieves would skip are not
// marked either.
func (r *MarkRole) Resolve(doc *coref.Document, env *Env) (Stats, error) {
	stats := newStats(r.Name())
	for sentI, ms := range doc.MentionsBySentence {
		for _, m := range ms {
			if !allowsType(r.settings.MentionTypes, m.Type) || skipMention(doc, env, 0, m) {
				continue
			}
			for _, sentJ := range SentenceWindow(sentI, r.settings.MaxSentenceDistance) {
				for _, a := range OrderedAntecedents(doc, sentJ, m, env.Dicts) {
					if m.ClusterID == a.ClusterID {
						continue
					}
					stats.Pairs++
					switch {
					case rules.IsRoleAppositive(m, a, env.Dicts):
						doc.MarkRole(m.ID)
						stats.Fired[RuleRoleApposition]++
					case rules.IsRoleAppositive(a, m, env.Dicts):
						doc.MarkRole(a.ID)
						stats.Fired[RuleRoleApposition]++
					}
				}
			}
		}
	}
	return stats, nil
}

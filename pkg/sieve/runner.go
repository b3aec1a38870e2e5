package sieve

import (
	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
)

// Effect says what a step does when its predicate holds.
type Effect int

const (
	// Reject ends the cascade without a merge.
	Reject Effect = iota
	// RejectIncompatible records the cluster pair as incompatible, then
	// rejects.
	RejectIncompatible
	// Accept ends the cascade with a merge.
	Accept
	// Tentative records a match that later vetoes may still overturn.
	Tentative
	// Veto rejects, but only while a tentative match is pending.
	Veto
	// Gate lets Decide choose the outcome.
	Gate
)

// Outcome is the result of a Gate step.
type Outcome int

const (
	// Pass continues with the next step.
	Pass Outcome = iota
	// Match records a tentative match and continues.
	Match
	// Withdraw drops any tentative match and continues.
	Withdraw
	Merge
	NoMerge
	NoMergeIncompatible
)

// Context is the pair under evaluation. Rep is the representative of the
// mention's cluster, which several rules consult instead of the mention
// itself.
type Context struct {
	Doc   *coref.Document
	Dicts *dict.Dictionaries
	Env   *Env

	MentionCluster    *coref.Cluster
	AntecedentCluster *coref.Cluster
	Rep               *coref.Mention
	Mention           *coref.Mention
	Antecedent        *coref.Mention

	// Rules are the rules enabled on the running sieve.
	Rules RuleSet

	tentative Rule
	// fired lets a Gate report a more specific rule than its own.
	fired Rule
}

// Tentative reports the rule behind a pending tentative match, RuleNone if
// there is none.
func (c *Context) Tentative() Rule { return c.tentative }

func (c *Context) markIncompatible() {
	c.Doc.AddIncompatible(c.MentionCluster.ID, c.AntecedentCluster.ID)
}

// Step is one (predicate, effect) pair of a cascade.
type Step struct {
	Rule   Rule
	Effect Effect
	// When is the predicate of every effect but Gate.
	When func(*Context) bool
	// Decide is the body of a Gate step.
	Decide func(*Context) Outcome
}

// Decision is the verdict on a mention/antecedent pair.
type Decision struct {
	Merge bool
	// Rule settled the decision; RuleNone when nothing fired.
	Rule Rule
}

// Run evaluates steps in order; the first step that ends the cascade wins.
// Without such a step the pending tentative match, if any, decides.
func Run(steps []Step, ctx *Context) Decision {
	ctx.tentative = RuleNone
	for _, s := range steps {
		if s.Effect == Gate {
			ctx.fired = RuleNone
			out := s.Decide(ctx)
			rule := s.Rule
			if ctx.fired != RuleNone {
				rule = ctx.fired
			}
			switch out {
			case Match:
				if ctx.tentative == RuleNone {
					ctx.tentative = rule
				}
			case Withdraw:
				ctx.tentative = RuleNone
			case Merge:
				return Decision{Merge: true, Rule: rule}
			case NoMerge:
				return Decision{Rule: rule}
			case NoMergeIncompatible:
				ctx.markIncompatible()
				return Decision{Rule: rule}
			}
			continue
		}
		if s.Effect == Veto && ctx.tentative == RuleNone {
			continue
		}
		if !s.When(ctx) {
			continue
		}
		switch s.Effect {
		case Reject, Veto:
			return Decision{Rule: s.Rule}
		case RejectIncompatible:
			ctx.markIncompatible()
			return Decision{Rule: s.Rule}
		case Accept:
			return Decision{Merge: true, Rule: s.Rule}
		case Tentative:
			if ctx.tentative == RuleNone {
				ctx.tentative = s.Rule
			}
		}
	}
	if ctx.tentative != RuleNone {
		return Decision{Merge: true, Rule: ctx.tentative}
	}
	return Decision{}
}

package sieve

import (
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
)

// OrderedAntecedents lists the candidates for m in sentence antSent.
//
// For an earlier sentence every mention is a candidate, in order. In m's
// own sentence only mentions before m qualify; a relative pronoun sees
// them nearest first, anything else sees them re-ranked by the clauses and
// noun phrases enclosing m. Same-head candidates starting at one token are
// finally ordered longer span first.
func OrderedAntecedents(doc *coref.Document, antSent int, m *coref.Mention, d *dict.Dictionaries) []*coref.Mention {
	if antSent < 0 || antSent >= len(doc.MentionsBySentence) {
		return nil
	}
	sent := doc.MentionsBySentence[antSent]
	var out []*coref.Mention
	if antSent != m.SentNum {
		out = append(out, sent...)
		preferLonger(out)
		return out
	}

	for _, c := range sent {
		if c == m {
			break
		}
		out = append(out, c)
	}
	if d.RelativePronouns.Has(m.LowerSpan()) {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	} else {
		out = sortByClause(out, m)
	}
	preferLonger(out)
	return out
}

// sortByClause walks up from m's subtree and, at every clause or noun
// phrase, appends the candidates that node dominates. When some candidate
// is never reached (no tree, or a candidate without a subtree) the input
// order is kept.
func sortByClause(cands []*coref.Mention, m *coref.Mention) []*coref.Mention {
	if m.SubTree == nil || m.Sentence == nil || m.Sentence.Tree == nil {
		return cands
	}
	sorted := make([]*coref.Mention, 0, len(cands))
	added := make(map[int]bool, len(cands))
	for cur := m.SubTree.Parent(); cur != nil; cur = cur.Parent() {
		if !cur.IsClause() && cur.Label != "NP" {
			continue
		}
		for _, c := range cands {
			if !added[c.ID] && c.SubTree != nil && cur.Dominates(c.SubTree) {
				sorted = append(sorted, c)
				added[c.ID] = true
			}
		}
	}
	if len(sorted) != len(cands) {
		return cands
	}
	return sorted
}

// preferLonger swaps same-sentence candidates sharing head and start so
// that the longer span comes first.
func preferLonger(l []*coref.Mention) {
	for i := range l {
		for j := i + 1; j < len(l); j++ {
			a, b := l[i], l[j]
			if a.HeadString == b.HeadString && a.Start == b.Start && a.SameSentence(b) &&
				len(a.SpanString()) < len(b.SpanString()) {
				l[i], l[j] = b, a
			}
		}
	}
}

// SentenceWindow returns the sentences to search for antecedents of a
// mention in sentence sent, nearest first. A negative maxDist is
// unbounded.
func SentenceWindow(sent, maxDist int) []int {
	var out []int
	for d := 0; d <= sent; d++ {
		if maxDist >= 0 && d > maxDist {
			break
		}
		out = append(out, sent-d)
	}
	return out
}

// Candidates maps a mention id to the antecedent ids it may pair with.
type Candidates map[int]map[int]bool

// Allows reports whether the pair survives the filter. A nil filter, or a
// mention the filter never saw, allows everything.
func (c Candidates) Allows(mentionID, antecedentID int) bool {
	if c == nil {
		return true
	}
	allowed, ok := c[mentionID]
	if !ok {
		return true
	}
	return allowed[antecedentID]
}

// HeuristicFilter bounds the document-wide candidate space before any
// sieve runs. It is advisory: sieves choose whether to honor it.
type HeuristicFilter struct {
	// MaxMentionDistance admits this many preceding mentions outright.
	MaxMentionDistance int
	// MaxMentionDistanceWithStringMatch admits farther mentions that share
	// a noun with the mention.
	MaxMentionDistanceWithStringMatch int
}

// DefaultHeuristicFilter returns the usual bounds.
func DefaultHeuristicFilter() HeuristicFilter {
	return HeuristicFilter{MaxMentionDistance: 50, MaxMentionDistanceWithStringMatch: 5000}
}

// Candidates computes the allowed antecedents of every mention.
func (h HeuristicFilter) Candidates(doc *coref.Document) Candidates {
	ms := doc.Mentions()
	nouns := make([]map[string]struct{}, len(ms))
	for i, m := range ms {
		nouns[i] = make(map[string]struct{})
		for _, t := range m.Words() {
			if strings.HasPrefix(t.POS, "N") {
				nouns[i][strings.ToLower(t.Word)] = struct{}{}
			}
		}
	}

	out := make(Candidates, len(ms))
	for i, m := range ms {
		allowed := make(map[int]bool)
		for j := i - 1; j >= 0; j-- {
			dist := i - j
			if dist <= h.MaxMentionDistance {
				allowed[ms[j].ID] = true
				continue
			}
			if dist > h.MaxMentionDistanceWithStringMatch {
				break
			}
			if shareWord(nouns[i], nouns[j]) {
				allowed[ms[j].ID] = true
			}
		}
		out[m.ID] = allowed
	}
	return out
}

func shareWord(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}

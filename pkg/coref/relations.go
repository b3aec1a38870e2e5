package coref

import "strings"

var copulas = map[string]struct{}{
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"am": {}, "'s": {}, "'re": {}, "'m": {}, "become": {}, "becomes": {}, "became": {},
}

// findSyntacticRelations derives apposition, predicate-nominative and
// relative-pronoun links for the mentions of sentence s from its parse.
// Links supplied by the caller are kept.
func (d *Document) findSyntacticRelations(s int) {
	sent := d.Sentences[s]
	if sent.Tree == nil || len(d.MentionsBySentence[s]) == 0 {
		return
	}
	bySpan := make(map[[2]int]*Mention)
	for _, m := range d.MentionsBySentence[s] {
		k := [2]int{m.Start, m.End}
		if _, ok := bySpan[k]; !ok {
			bySpan[k] = m
		}
	}
	at := func(t *Tree) *Mention { return bySpan[[2]int{t.Start, t.End}] }

	sent.Tree.Walk(func(n *Tree) {
		switch {
		case n.IsNounPhrase():
			markAppositions(n, at)
			markRelativePronoun(n, at)
		case strings.HasPrefix(n.Label, "S"):
			markPredicateNominative(n, at)
		}
	})
}

// markAppositions links NP siblings of the form "NP , NP" inside an NP that
// is not a coordination.
func markAppositions(n *Tree, at func(*Tree) *Mention) {
	for _, c := range n.Children {
		if c.Label == "CC" || c.Label == "CONJP" {
			return
		}
	}
	for i := 0; i+2 < len(n.Children); i++ {
		a, comma, b := n.Children[i], n.Children[i+1], n.Children[i+2]
		if !a.IsNounPhrase() || comma.Label != "," || !b.IsNounPhrase() {
			continue
		}
		// "A, B, C" without a conjunction is still an enumeration.
		if i+4 < len(n.Children) && n.Children[i+3].Label == "," && n.Children[i+4].IsNounPhrase() {
			return
		}
		m1, m2 := at(a), at(b)
		if m1 == nil || m2 == nil {
			continue
		}
		m1.Appositions.Add(m2.ID)
		m2.Appositions.Add(m1.ID)
	}
}

// markRelativePronoun links "NP (SBAR (WHNP who) ...)" to its head NP.
func markRelativePronoun(n *Tree, at func(*Tree) *Mention) {
	for i := 0; i+1 < len(n.Children); i++ {
		np, sbar := n.Children[i], n.Children[i+1]
		if !np.IsNounPhrase() || sbar.Label != "SBAR" || len(sbar.Children) == 0 {
			continue
		}
		wh := sbar.Children[0]
		if !strings.HasPrefix(wh.Label, "WH") {
			continue
		}
		ant, rel := at(np), at(wh)
		if rel == nil && len(wh.Children) == 1 {
			rel = at(wh.Children[0])
		}
		if ant == nil || rel == nil {
			continue
		}
		ant.RelativePronouns.Add(rel.ID)
		rel.RelativePronouns.Add(ant.ID)
	}
}

// markPredicateNominative links the subject of "NP (VP copula NP)".
func markPredicateNominative(n *Tree, at func(*Tree) *Mention) {
	for i := 0; i+1 < len(n.Children); i++ {
		subj, vp := n.Children[i], n.Children[i+1]
		if !subj.IsNounPhrase() || vp.Label != "VP" {
			continue
		}
		for j := 0; j+1 < len(vp.Children); j++ {
			v, obj := vp.Children[j], vp.Children[j+1]
			if !v.IsPreTerminal() || !strings.HasPrefix(v.Label, "VB") {
				continue
			}
			if _, ok := copulas[strings.ToLower(v.Children[0].Label)]; !ok || !obj.IsNounPhrase() {
				continue
			}
			m1, m2 := at(subj), at(obj)
			if m1 != nil && m2 != nil {
				m1.PredicateNominatives.Add(m2.ID)
				m2.PredicateNominatives.Add(m1.ID)
			}
		}
	}
}

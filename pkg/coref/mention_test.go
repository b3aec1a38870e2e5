package coref_test

import (
	"testing"

	"github.com/orneryd/corefsieve/pkg/coref"
	ct "github.com/orneryd/corefsieve/pkg/coref/coreftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTree(t *testing.T) {
	t.Run("spans_and_parents", func(t *testing.T) {
		tree, err := coref.ParseTree("(ROOT (S (NP (NNP John)) (VP (VBD left) (NP (DT the) (NN room)))))")
		require.NoError(t, err)
		assert.Equal(t, "ROOT", tree.Label)
		assert.Equal(t, 0, tree.Start)
		assert.Equal(t, 4, tree.End)

		np := tree.Covering(2, 4)
		require.NotNil(t, np)
		assert.Equal(t, "NP", np.Label)
		assert.True(t, tree.Dominates(np))
		assert.False(t, np.Dominates(tree))
		assert.Equal(t, "VP", np.Parent().Label)
	})

	t.Run("unlabeled_wrapper", func(t *testing.T) {
		tree, err := coref.ParseTree("( (S (NP (PRP It)) (VP (VBZ works))))")
		require.NoError(t, err)
		assert.Equal(t, "S", tree.Label)
		assert.Equal(t, "(S (NP (PRP It)) (VP (VBZ works)))", tree.String())
	})

	t.Run("unbalanced", func(t *testing.T) {
		_, err := coref.ParseTree("(S (NP (PRP It))")
		assert.ErrorIs(t, err, coref.ErrTreeSyntax)
		_, err = coref.ParseTree("")
		assert.ErrorIs(t, err, coref.ErrTreeSyntax)
	})
}

func TestRemovePhraseAfterHead(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		start    int
		end      int
		head     int
		expected string
	}{
		{"no_cut", "the/DT old/JJ man/NN", 0, 3, 2, "the old man"},
		{"comma_after_head", "the/DT man/NN ,/, a/DT doctor/NN", 0, 5, 1, "the man"},
		{"wh_after_head", "the/DT man/NN who/WP left/VBD", 0, 4, 1, "the man"},
		{"head_after_comma", "Paris/NNP ,/, the/DT city/NN", 0, 4, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ct.Document("rm", []*coref.Sentence{ct.Sentence(tt.sentence)},
				ct.Mention(0, tt.start, tt.end, tt.head, coref.Nominal))
			m, _ := d.Mention(0)
			assert.Equal(t, tt.expected, m.RemovePhraseAfterHead())
		})
	}
}

func TestSplitPattern(t *testing.T) {
	s := ct.Sentence("the/DT big/JJ red/JJ dog/NN barked/VBD")
	d := ct.Document("sp", []*coref.Sentence{s}, ct.Mention(0, 0, 4, 3, coref.Nominal))
	m, _ := d.Mention(0)
	p := m.SplitPattern()
	assert.Equal(t, "dog", p[0])
	assert.Equal(t, "red dog", p[1])
	assert.Equal(t, "big red dog", p[2])
	assert.Equal(t, "big red dog", p[3])
}

func TestContexts(t *testing.T) {
	s := ct.Sentence("New/NNP/LOCATION York/NNP/LOCATION mayor/NN Bill/NNP/PERSON de/NNP/PERSON Blasio/NNP/PERSON spoke/VBD in/IN Albany/NNP/LOCATION")
	d := ct.Document("ctx", []*coref.Sentence{s}, ct.Mention(0, 0, 3, 2, coref.Nominal))
	m, _ := d.Mention(0)

	assert.Equal(t, []string{"new york"}, m.PremodifierContext())
	assert.Equal(t, []string{"bill de blasio", "albany"}, m.Context())
}

func TestHeadsAgree(t *testing.T) {
	s := ct.Sentence("George/NNP/PERSON met/VBD George/NNP/PERSON Bush/NNP/PERSON")
	d := ct.Document("ha", []*coref.Sentence{s},
		ct.Mention(0, 0, 1, 0, coref.Proper, ct.NER("PERSON")),
		ct.Mention(0, 2, 4, 3, coref.Proper, ct.NER("PERSON")),
	)
	george, _ := d.Mention(0)
	bush, _ := d.Mention(1)
	assert.True(t, george.HeadsAgree(bush))
	assert.True(t, bush.HeadsAgree(george))
}

func TestSyntacticRelations(t *testing.T) {
	t.Run("apposition", func(t *testing.T) {
		s := ct.WithTree(ct.Sentence("Obama/NNP ,/, the/DT president/NN ,/, spoke/VBD"),
			"(ROOT (S (NP (NP (NNP Obama)) (, ,) (NP (DT the) (NN president)) (, ,)) (VP (VBD spoke))))")
		d := ct.Document("app", []*coref.Sentence{s},
			ct.Mention(0, 0, 1, 0, coref.Proper),
			ct.Mention(0, 2, 4, 3, coref.Nominal),
		)
		obama, _ := d.Mention(0)
		pres, _ := d.Mention(1)
		assert.True(t, obama.IsApposition(pres))
		assert.True(t, pres.IsApposition(obama))
		assert.False(t, obama.IsPredicateNominative(pres))
	})

	t.Run("coordination_is_not_apposition", func(t *testing.T) {
		s := ct.WithTree(ct.Sentence("cats/NNS ,/, dogs/NNS and/CC birds/NNS"),
			"(ROOT (NP (NP (NNS cats)) (, ,) (NP (NNS dogs)) (CC and) (NP (NNS birds))))")
		d := ct.Document("coord", []*coref.Sentence{s},
			ct.Mention(0, 0, 1, 0, coref.Nominal),
			ct.Mention(0, 2, 3, 2, coref.Nominal),
		)
		a, _ := d.Mention(0)
		b, _ := d.Mention(1)
		assert.False(t, a.IsApposition(b))
	})

	t.Run("predicate_nominative", func(t *testing.T) {
		s := ct.WithTree(ct.Sentence("Obama/NNP is/VBZ the/DT president/NN"),
			"(ROOT (S (NP (NNP Obama)) (VP (VBZ is) (NP (DT the) (NN president)))))")
		d := ct.Document("pn", []*coref.Sentence{s},
			ct.Mention(0, 0, 1, 0, coref.Proper),
			ct.Mention(0, 2, 4, 3, coref.Nominal),
		)
		a, _ := d.Mention(0)
		b, _ := d.Mention(1)
		assert.True(t, a.IsPredicateNominative(b))
		assert.True(t, b.IsPredicateNominative(a))
	})

	t.Run("relative_pronoun", func(t *testing.T) {
		s := ct.WithTree(ct.Sentence("the/DT man/NN who/WP left/VBD"),
			"(ROOT (NP (NP (DT the) (NN man)) (SBAR (WHNP (WP who)) (S (VP (VBD left))))))")
		d := ct.Document("rel", []*coref.Sentence{s},
			ct.Mention(0, 0, 2, 1, coref.Nominal),
			ct.Mention(0, 2, 3, 2, coref.Pronominal),
		)
		man, _ := d.Mention(0)
		who, _ := d.Mention(1)
		assert.True(t, man.IsRelativePronoun(who))
		require.NotNil(t, who.SubTree)
	})
}

func TestAppearsEarlierThan(t *testing.T) {
	a := &coref.Mention{SentNum: 0, Start: 2, End: 5}
	b := &coref.Mention{SentNum: 0, Start: 2, End: 3}
	c := &coref.Mention{SentNum: 1, Start: 0, End: 1}
	assert.True(t, a.AppearsEarlierThan(b))
	assert.False(t, b.AppearsEarlierThan(a))
	assert.True(t, b.AppearsEarlierThan(c))
}

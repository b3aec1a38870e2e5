package conll

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/corefsieve/pkg/coref"
	ct "github.com/orneryd/corefsieve/pkg/coref/coreftest"
)

func sixTokens() (*coref.Document, *coref.Mention, *coref.Mention) {
	sents := []*coref.Sentence{ct.Sentence("Barack/NNP Obama/NNP said/VBD that/IN again/RB he/PRP")}
	m0 := ct.Mention(0, 0, 2, 1, coref.Proper)
	m1 := ct.Mention(0, 5, 6, 5, coref.Pronominal)
	doc := ct.Document("wsj_0001", sents, m0, m1)
	return doc, m0, m1
}

func columnOf(t *testing.T, out string) []string {
	t.Helper()
	var col []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "\t")
		require.Len(t, f, 5)
		col = append(col, f[4])
	}
	return col
}

// =============================================================================
// Write
// =============================================================================

func TestWrite(t *testing.T) {
	t.Run("two_mention_chain", func(t *testing.T) {
		doc, m0, m1 := sixTokens()
		chains := map[int]*coref.Chain{2: {ID: 2, Mentions: []*coref.Mention{m0, m1}}}

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, doc, chains))
		out := buf.String()

		assert.True(t, strings.HasPrefix(out, "#begin document (wsj_0001); part 000\n"))
		assert.True(t, strings.HasSuffix(out, "#end document\n"))
		assert.Equal(t, []string{"(2", "2)", "-", "-", "-", "(2)"}, columnOf(t, out))
		assert.Contains(t, out, "wsj_0001\t0\t1\tObama\t2)\n")
	})

	t.Run("nested_markers", func(t *testing.T) {
		sents := []*coref.Sentence{ct.Sentence("his/PRP$ own/JJ house/NN")}
		outer := ct.Mention(0, 0, 3, 2, coref.Nominal)
		his := ct.Mention(0, 0, 1, 0, coref.Pronominal)
		doc := ct.Document("d", sents, outer, his)
		chains := map[int]*coref.Chain{
			1: {ID: 1, Mentions: []*coref.Mention{outer}},
			4: {ID: 4, Mentions: []*coref.Mention{his}},
		}
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, doc, chains))
		assert.Equal(t, []string{"(1|(4)", "-", "1)"}, columnOf(t, buf.String()))
	})

	t.Run("no_chains", func(t *testing.T) {
		doc, _, _ := sixTokens()
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, doc, nil))
		assert.Equal(t, []string{"-", "-", "-", "-", "-", "-"}, columnOf(t, buf.String()))
	})

	t.Run("span_outside_sentence", func(t *testing.T) {
		doc, m0, _ := sixTokens()
		bad := &coref.Mention{ID: 9, SentNum: 0, Start: 4, End: 8}
		err := Write(&bytes.Buffer{}, doc, map[int]*coref.Chain{1: {ID: 1, Mentions: []*coref.Mention{m0, bad}}})
		assert.ErrorIs(t, err, coref.ErrMalformedMention)
	})
}

// =============================================================================
// Parse
// =============================================================================

func TestRoundTrip(t *testing.T) {
	doc, m0, m1 := sixTokens()
	chains := map[int]*coref.Chain{2: {ID: 2, Mentions: []*coref.Mention{m1, m0}}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, chains))

	docs, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	got := docs[0]
	assert.Equal(t, "wsj_0001", got.ID)
	assert.Equal(t, 0, got.Part)
	require.Len(t, got.Words, 1)
	assert.Equal(t, []string{"Barack", "Obama", "said", "that", "again", "he"}, got.Words[0])
	assert.Equal(t, map[int][]Span{2: {{0, 0, 2}, {0, 5, 6}}}, got.Chains)
	assert.Equal(t, Spans(chains), got.Chains)
}

func TestParse(t *testing.T) {
	t.Run("multiple_documents_and_sentences", func(t *testing.T) {
		in := "#begin document (a); part 001\n" +
			"a 1 0 John (1)\n" +
			"a 1 1 left -\n" +
			"\n" +
			"a 1 0 He (1)\n" +
			"a 1 1 his (1)|(2\n" +
			"a 1 2 dog 2)\n" +
			"\n" +
			"#end document\n" +
			"#begin document (b); part 000\n" +
			"b 0 0 Rain -\n" +
			"#end document\n"
		docs, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, docs, 2)

		a := docs[0]
		assert.Equal(t, 1, a.Part)
		assert.Len(t, a.Words, 2)
		assert.Equal(t, []Span{{0, 0, 1}, {1, 0, 1}, {1, 1, 2}}, a.Chains[1])
		assert.Equal(t, []Span{{1, 1, 3}}, a.Chains[2])

		assert.Equal(t, "b", docs[1].ID)
		assert.Empty(t, docs[1].Chains)
		assert.Equal(t, [][]string{{"Rain"}}, docs[1].Words)
	})

	t.Run("nested_same_cluster", func(t *testing.T) {
		in := "#begin document (n); part 000\n" +
			"n 0 0 the (3|(3\n" +
			"n 0 1 king 3)\n" +
			"n 0 2 himself 3)\n" +
			"#end document\n"
		docs, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []Span{{0, 0, 3}, {0, 0, 2}}, docs[0].Chains[3])
	})

	errorCases := []struct {
		name string
		in   string
	}{
		{"bad_header", "#begin document foo\n#end document\n"},
		{"unclosed", "#begin document (x); part 000\nx 0 0 a (1\n#end document\n"},
		{"close_without_open", "#begin document (x); part 000\nx 0 0 a 1)\n#end document\n"},
		{"bad_marker", "#begin document (x); part 000\nx 0 0 a (q)\n#end document\n"},
		{"short_row", "#begin document (x); part 000\nx 0 a\n#end document\n"},
		{"missing_end", "#begin document (x); part 000\nx 0 0 a -\n"},
		{"token_outside", "x 0 0 a -\n"},
		{"cross_sentence", "#begin document (x); part 000\nx 0 0 a (1\n\nx 0 0 b 1)\n#end document\n"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

// Package coreftest builds small annotated documents for tests.
package coreftest

import (
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
)

// Sentence parses whitespace-separated "word/POS/NER" tokens. POS and NER
// are optional; the NER tag defaults to "O".
func Sentence(line string) *coref.Sentence {
	var toks []coref.Token
	for _, f := range strings.Fields(line) {
		parts := strings.Split(f, "/")
		t := coref.Token{NER: coref.NoNER}
		switch {
		case len(parts) >= 3:
			t.Word = strings.Join(parts[:len(parts)-2], "/")
			t.POS = parts[len(parts)-2]
			t.NER = parts[len(parts)-1]
		case len(parts) == 2:
			t.Word, t.POS = parts[0], parts[1]
		default:
			t.Word = f
		}
		t.Lemma = strings.ToLower(t.Word)
		toks = append(toks, t)
	}
	return &coref.Sentence{Tokens: toks}
}

// WithTree attaches a bracketed parse to s and panics on syntax errors.
func WithTree(s *coref.Sentence, bracketed string) *coref.Sentence {
	t, err := coref.ParseTree(bracketed)
	if err != nil {
		panic(err)
	}
	s.Tree = t
	return s
}

// Option adjusts a mention built by Mention.
type Option func(*coref.Mention)

// Mention builds a mention over [start, end) of sentence sent with the head
// at absolute token index head. Gold cluster and depending verb default to
// -1.
func Mention(sent, start, end, head int, typ coref.MentionType, opts ...Option) *coref.Mention {
	m := &coref.Mention{
		SentNum:       sent,
		Start:         start,
		End:           end,
		HeadIndex:     head,
		Type:          typ,
		NER:           coref.NoNER,
		GoldClusterID: -1,
		DependingVerb: -1,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Attrs sets number, gender and animacy.
func Attrs(n coref.Number, g coref.Gender, a coref.Animacy) Option {
	return func(m *coref.Mention) {
		m.Number, m.Gender, m.Animacy = n, g, a
	}
}

// NER sets the entity type.
func NER(tag string) Option { return func(m *coref.Mention) { m.NER = tag } }

// Person sets the grammatical person.
func Person(p coref.Person) Option { return func(m *coref.Mention) { m.Person = p } }

// Gold sets the gold cluster id.
func Gold(id int) Option { return func(m *coref.Mention) { m.GoldClusterID = id } }

// Speaker sets the speaker annotation and utterance number.
func Speaker(name string, utterance int) Option {
	return func(m *coref.Mention) { m.Speaker, m.Utterance = name, utterance }
}

// Role sets grammatical role flags against the governing verb index.
func Role(verb int, subject, object bool) Option {
	return func(m *coref.Mention) {
		m.DependingVerb = verb
		m.IsSubject = subject
		m.IsDirectObject = object
	}
}

// Document registers the mentions over the sentences and finalizes the
// document, panicking on malformed input.
func Document(id string, sents []*coref.Sentence, ms ...*coref.Mention) *coref.Document {
	d := NewUnfinalized(id, sents, ms...)
	if err := d.Finalize(); err != nil {
		panic(err)
	}
	return d
}

// NewUnfinalized registers the mentions without finalizing.
func NewUnfinalized(id string, sents []*coref.Sentence, ms ...*coref.Mention) *coref.Document {
	d := coref.NewDocument(id, sents)
	for _, m := range ms {
		d.AddMention(m)
	}
	return d
}

// Obama returns the three-sentence document "Barack Obama spoke . / He
// smiled . / President Obama left ." with one gold entity.
func Obama() *coref.Document {
	sents := []*coref.Sentence{
		Sentence("Barack/NNP/PERSON Obama/NNP/PERSON spoke/VBD ./."),
		Sentence("He/PRP smiled/VBD ./."),
		Sentence("President/NNP Obama/NNP/PERSON left/VBD ./."),
	}
	return Document("obama", sents,
		Mention(0, 0, 2, 1, coref.Proper, Attrs(coref.Singular, coref.Male, coref.Animate), NER("PERSON"), Gold(1)),
		Mention(1, 0, 1, 0, coref.Pronominal, Attrs(coref.Singular, coref.Male, coref.Animate), Person(coref.He), Gold(1)),
		Mention(2, 0, 2, 1, coref.Proper, Attrs(coref.Singular, coref.Male, coref.Animate), NER("PERSON"), Gold(1)),
	)
}

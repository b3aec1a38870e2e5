package coref

import (
	"strings"
)

// Token is one word of a sentence with the annotations produced upstream.
type Token struct {
	Word      string
	Lemma     string
	POS       string
	NER       string
	Speaker   string
	Utterance int
}

// LemmaOrWord returns the lemma, or the lower-cased word when no lemma
// was supplied.
func (t Token) LemmaOrWord() string {
	if t.Lemma != "" {
		return t.Lemma
	}
	return strings.ToLower(t.Word)
}

// NamedEntity returns the NER tag, treating an empty tag as outside.
func (t Token) NamedEntity() string {
	if t.NER == "" {
		return NoNER
	}
	return t.NER
}

// Sentence is a tokenized sentence with an optional parse.
type Sentence struct {
	Index  int
	Tokens []Token
	Tree   *Tree
}

// IDSet is a set of mention ids.
type IDSet map[int]struct{}

// Add inserts id, allocating the set when needed.
func (s *IDSet) Add(id int) {
	if *s == nil {
		*s = make(IDSet)
	}
	(*s)[id] = struct{}{}
}

// Has reports membership; a nil set is empty.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// SpeakerInfo describes who uttered a mention.
type SpeakerInfo struct {
	// ID is the raw speaker annotation (a name, or a mention id in digits).
	ID string
	// Name is the display name of the speaker.
	Name string
	// MentionIDs lists mentions known to denote the speaker.
	MentionIDs []int
}

// Mention is a noun phrase that may refer to an entity.
//
// Linguistic facts are fixed by the upstream mention detector. ClusterID,
// IsSingleton, SpeakerInfo and the relation sets change during resolution.
type Mention struct {
	ID        int
	SentNum   int
	Start     int // first token, inclusive
	End       int // last token, exclusive
	HeadIndex int // absolute token index of the head inside the sentence
	// HeadString is the lower-cased head word.
	HeadString string

	Type    MentionType
	Number  Number
	Gender  Gender
	Animacy Animacy
	Person  Person
	NER     string

	IsSubject           bool
	IsDirectObject      bool
	IsIndirectObject    bool
	IsPrepositionObject bool
	// DependingVerb is the token index of the governing verb, -1 for none.
	DependingVerb int
	Generic       bool

	// Speaker is the raw speaker annotation of the head token.
	Speaker   string
	Utterance int
	Paragraph int

	Sentence *Sentence
	SubTree  *Tree

	ClusterID     int
	GoldClusterID int
	IsSingleton   bool
	SpeakerInfo   *SpeakerInfo
	// Num is the position of the mention in document order.
	Num int

	Appositions          IDSet
	PredicateNominatives IDSet
	RelativePronouns     IDSet
}

// Words returns the tokens covered by the mention.
func (m *Mention) Words() []Token {
	if m.Sentence == nil || m.Start < 0 || m.End > len(m.Sentence.Tokens) || m.Start >= m.End {
		return nil
	}
	return m.Sentence.Tokens[m.Start:m.End]
}

// HeadToken returns the head token, or a zero Token when the head index is
// out of range.
func (m *Mention) HeadToken() Token {
	if m.Sentence == nil || m.HeadIndex < 0 || m.HeadIndex >= len(m.Sentence.Tokens) {
		return Token{}
	}
	return m.Sentence.Tokens[m.HeadIndex]
}

// SpanString joins the covered words with spaces.
func (m *Mention) SpanString() string { return joinWords(m.Words()) }

// LowerSpan is the normalized, lower-cased span string.
func (m *Mention) LowerSpan() string { return Normalize(m.SpanString()) }

func (m *Mention) String() string { return m.SpanString() }

// IsPronominal reports whether the mention was typed as a pronoun.
func (m *Mention) IsPronominal() bool { return m.Type == Pronominal }

// NamedEntity returns the mention's NER type, "O" when untyped.
func (m *Mention) NamedEntity() string {
	if m.NER == "" {
		return NoNER
	}
	return m.NER
}

// SameSentence reports whether both mentions come from one sentence.
func (m *Mention) SameSentence(o *Mention) bool { return m.SentNum == o.SentNum }

// IncludedIn reports whether m's span lies within o's span.
func (m *Mention) IncludedIn(o *Mention) bool {
	return m.SameSentence(o) && m.Start >= o.Start && m.End <= o.End
}

// InsideIn is IncludedIn; both names are used by the rules.
func (m *Mention) InsideIn(o *Mention) bool { return m.IncludedIn(o) }

// AppearsEarlierThan orders mentions by sentence, then start offset, with
// the longer span first on equal starts.
func (m *Mention) AppearsEarlierThan(o *Mention) bool {
	if m.SentNum != o.SentNum {
		return m.SentNum < o.SentNum
	}
	if m.Start != o.Start {
		return m.Start < o.Start
	}
	return m.End > o.End
}

// IsApposition reports whether o is an appositive partner of m.
func (m *Mention) IsApposition(o *Mention) bool { return m.Appositions.Has(o.ID) }

// IsPredicateNominative reports whether o is a predicate nominative of m.
func (m *Mention) IsPredicateNominative(o *Mention) bool {
	return m.PredicateNominatives.Has(o.ID)
}

// IsRelativePronoun reports whether o is a relative pronoun attached to m.
func (m *Mention) IsRelativePronoun(o *Mention) bool { return m.RelativePronouns.Has(o.ID) }

// IsCoordinated reports whether the span contains a coordinating
// conjunction.
func (m *Mention) IsCoordinated() bool {
	for _, t := range m.Words() {
		if t.POS == "CC" {
			return true
		}
	}
	return false
}

// NumbersAgree tolerates unknown values on either side.
func (m *Mention) NumbersAgree(o *Mention) bool {
	return m.Number == UnknownNumber || o.Number == UnknownNumber || m.Number == o.Number
}

// GendersAgree tolerates unknown values on either side.
func (m *Mention) GendersAgree(o *Mention) bool {
	return m.Gender == UnknownGender || o.Gender == UnknownGender || m.Gender == o.Gender
}

// AnimaciesAgree tolerates unknown values on either side.
func (m *Mention) AnimaciesAgree(o *Mention) bool {
	return m.Animacy == UnknownAnimacy || o.Animacy == UnknownAnimacy || m.Animacy == o.Animacy
}

// HeadsAgree compares head strings, letting two entities of the same type
// agree when one span's words are contained in the other's ("George" and
// "George Bush").
func (m *Mention) HeadsAgree(o *Mention) bool {
	ne, one := m.NamedEntity(), o.NamedEntity()
	if ne != NoNER && one != NoNER && ne == one && (wordsContained(m, o) || wordsContained(o, m)) {
		return true
	}
	return m.HeadString == o.HeadString
}

// wordsContained reports whether every word of small occurs in big.
func wordsContained(small, big *Mention) bool {
	words := make(map[string]struct{})
	for _, t := range big.Words() {
		words[strings.ToLower(t.Word)] = struct{}{}
	}
	for _, t := range small.Words() {
		if _, ok := words[strings.ToLower(t.Word)]; !ok {
			return false
		}
	}
	return true
}

// RemovePhraseAfterHead cuts the span at the first comma or wh-word that
// follows the head. It returns "" when the cut point precedes the head.
func (m *Mention) RemovePhraseAfterHead() string {
	words := m.Words()
	posComma, posWH := -1, -1
	for i, w := range words {
		if posComma == -1 && w.POS == "," {
			posComma = m.Start + i
		}
		if posWH == -1 && strings.HasPrefix(w.POS, "W") {
			posWH = m.Start + i
		}
	}
	switch {
	case posComma != -1:
		if m.HeadIndex < posComma {
			return joinWords(words[:posComma-m.Start])
		}
		return ""
	case posWH != -1:
		if m.HeadIndex < posWH {
			return joinWords(words[:posWH-m.Start])
		}
		return ""
	default:
		return joinWords(words)
	}
}

// PremodifierContext returns the named-entity strings found between the
// mention start and its head.
func (m *Mention) PremodifierContext() []string {
	if m.Sentence == nil || m.HeadIndex <= m.Start {
		return nil
	}
	return entityStrings(m.Sentence.Tokens, m.Start, m.HeadIndex, -1, -1)
}

// Context returns the named-entity strings of the sentence outside the
// mention span.
func (m *Mention) Context() []string {
	if m.Sentence == nil {
		return nil
	}
	return entityStrings(m.Sentence.Tokens, 0, len(m.Sentence.Tokens), m.Start, m.End)
}

// entityStrings groups maximal runs of equally tagged, non-"O" tokens in
// [from, to) into space-joined lower-case strings, skipping [skipFrom, skipTo).
func entityStrings(toks []Token, from, to, skipFrom, skipTo int) []string {
	var out []string
	var cur []string
	curTag := ""
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(strings.Join(cur, " ")))
			cur = cur[:0]
		}
		curTag = ""
	}
	if to > len(toks) {
		to = len(toks)
	}
	for i := from; i < to; i++ {
		if i >= skipFrom && i < skipTo {
			flush()
			continue
		}
		tag := toks[i].NamedEntity()
		if tag == NoNER {
			flush()
			continue
		}
		if tag != curTag {
			flush()
			curTag = tag
		}
		cur = append(cur, toks[i].Word)
	}
	flush()
	return out
}

var determiners = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// SplitPattern returns the four lexical patterns keyed by the coreference
// dictionary columns: the head lemma; the closest noun or adjective
// premodifier with the head; all noun and adjective premodifiers with the
// head; and the lemmatized span without determiners.
func (m *Mention) SplitPattern() [4]string {
	var p [4]string
	head := m.HeadToken().LemmaOrWord()
	p[0] = head

	var premods []string
	if m.Sentence != nil {
		for i := m.Start; i < m.HeadIndex && i < len(m.Sentence.Tokens); i++ {
			t := m.Sentence.Tokens[i]
			if strings.HasPrefix(t.POS, "NN") || strings.HasPrefix(t.POS, "JJ") {
				premods = append(premods, t.LemmaOrWord())
			}
		}
	}
	if len(premods) > 0 {
		p[1] = premods[len(premods)-1] + " " + head
		p[2] = strings.Join(premods, " ") + " " + head
	} else {
		p[1], p[2] = head, head
	}

	var full []string
	for _, t := range m.Words() {
		l := t.LemmaOrWord()
		if _, ok := determiners[strings.ToLower(l)]; ok {
			continue
		}
		full = append(full, l)
	}
	p[3] = strings.Join(full, " ")
	return p
}

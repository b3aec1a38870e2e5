// Package docjson reads annotated documents from JSON and writes
// resolution results back as JSON.
//
// An input stream holds one or more document objects, either concatenated
// or one per line:
//
//	{"id": "wsj_0001", "genre": "nw",
//	 "sentences": [{"tokens": [{"word": "Obama", "pos": "NNP", "ner": "PERSON"},
//	                           {"word": "spoke", "pos": "VBD"}],
//	                "tree": "(ROOT (S (NP (NNP Obama)) (VP (VBD spoke))))"}],
//	 "mentions": [{"sentence": 0, "start": 0, "end": 1, "head": 0,
//	               "type": "PROPER", "number": "SINGULAR", "gender": "MALE",
//	               "animacy": "ANIMATE", "ner": "PERSON", "gold": 1}]}
//
// Mentions receive ids in the order they are listed.
package docjson

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/orneryd/corefsieve/pkg/coref"
)

// ErrInvalid is returned for documents that cannot be built.
var ErrInvalid = errors.New("docjson: invalid document")

type Token struct {
	Word      string `json:"word"`
	Lemma     string `json:"lemma,omitempty"`
	POS       string `json:"pos,omitempty"`
	NER       string `json:"ner,omitempty"`
	Speaker   string `json:"speaker,omitempty"`
	Utterance int    `json:"utterance,omitempty"`
}

type Sentence struct {
	Tokens []Token `json:"tokens"`
	// Tree is a bracketed constituency parse.
	Tree string `json:"tree,omitempty"`
}

type Mention struct {
	Sentence int    `json:"sentence"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Head     int    `json:"head"`
	Type     string `json:"type"`
	Number   string `json:"number,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Animacy  string `json:"animacy,omitempty"`
	Person   string `json:"person,omitempty"`
	NER      string `json:"ner,omitempty"`

	Subject           bool `json:"subject,omitempty"`
	DirectObject      bool `json:"direct_object,omitempty"`
	IndirectObject    bool `json:"indirect_object,omitempty"`
	PrepositionObject bool `json:"preposition_object,omitempty"`
	// Verb is the token index of the governing verb.
	Verb    *int `json:"verb,omitempty"`
	Generic bool `json:"generic,omitempty"`

	Speaker   string `json:"speaker,omitempty"`
	Utterance int    `json:"utterance,omitempty"`
	Paragraph int    `json:"paragraph,omitempty"`
	// Gold is the gold cluster id, if annotated.
	Gold *int `json:"gold,omitempty"`
}

type Document struct {
	ID        string         `json:"id"`
	Part      int            `json:"part,omitempty"`
	Genre     string         `json:"genre,omitempty"`
	Type      string         `json:"type,omitempty"`
	Speakers  map[int]string `json:"speakers,omitempty"`
	Sentences []Sentence     `json:"sentences"`
	Mentions  []Mention      `json:"mentions"`
}

// Build converts d into an unfinalized coref.Document.
func (d *Document) Build() (*coref.Document, error) {
	sents := make([]*coref.Sentence, len(d.Sentences))
	for i, s := range d.Sentences {
		toks := make([]coref.Token, len(s.Tokens))
		for j, t := range s.Tokens {
			toks[j] = coref.Token{
				Word:      t.Word,
				Lemma:     t.Lemma,
				POS:       t.POS,
				NER:       t.NER,
				Speaker:   t.Speaker,
				Utterance: t.Utterance,
			}
			if toks[j].NER == "" {
				toks[j].NER = coref.NoNER
			}
		}
		sents[i] = &coref.Sentence{Tokens: toks}
		if s.Tree != "" {
			tree, err := coref.ParseTree(s.Tree)
			if err != nil {
				return nil, fmt.Errorf("%w: %s sentence %d: %w", ErrInvalid, d.ID, i, err)
			}
			sents[i].Tree = tree
		}
	}

	doc := coref.NewDocument(d.ID, sents)
	doc.Part = d.Part
	doc.Genre = d.Genre
	doc.Type = coref.ParseDocType(d.Type)
	for u, sp := range d.Speakers {
		doc.Speakers[u] = sp
	}
	for i, jm := range d.Mentions {
		typ, err := coref.ParseMentionType(jm.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s mention %d: %w", ErrInvalid, d.ID, i, err)
		}
		m := &coref.Mention{
			SentNum:             jm.Sentence,
			Start:               jm.Start,
			End:                 jm.End,
			HeadIndex:           jm.Head,
			Type:                typ,
			Number:              coref.ParseNumber(jm.Number),
			Gender:              coref.ParseGender(jm.Gender),
			Animacy:             coref.ParseAnimacy(jm.Animacy),
			Person:              coref.ParsePerson(jm.Person),
			NER:                 jm.NER,
			IsSubject:           jm.Subject,
			IsDirectObject:      jm.DirectObject,
			IsIndirectObject:    jm.IndirectObject,
			IsPrepositionObject: jm.PrepositionObject,
			DependingVerb:       -1,
			Generic:             jm.Generic,
			Speaker:             jm.Speaker,
			Utterance:           jm.Utterance,
			Paragraph:           jm.Paragraph,
			GoldClusterID:       -1,
		}
		if m.NER == "" {
			m.NER = coref.NoNER
		}
		if jm.Verb != nil {
			m.DependingVerb = *jm.Verb
		}
		if jm.Gold != nil {
			m.GoldClusterID = *jm.Gold
		}
		doc.AddMention(m)
	}
	return doc, nil
}

// FromDocument is the inverse of Build. Mentions are listed by id, so a
// rebuilt document keeps the same ids.
func FromDocument(doc *coref.Document) *Document {
	out := &Document{
		ID:        doc.ID,
		Part:      doc.Part,
		Genre:     doc.Genre,
		Type:      doc.Type.String(),
		Sentences: make([]Sentence, len(doc.Sentences)),
	}
	if len(doc.Speakers) > 0 {
		out.Speakers = make(map[int]string, len(doc.Speakers))
		for u, sp := range doc.Speakers {
			out.Speakers[u] = sp
		}
	}
	for i, s := range doc.Sentences {
		js := Sentence{Tokens: make([]Token, len(s.Tokens))}
		for j, t := range s.Tokens {
			js.Tokens[j] = Token{Word: t.Word, Lemma: t.Lemma, POS: t.POS, NER: t.NER,
				Speaker: t.Speaker, Utterance: t.Utterance}
		}
		if s.Tree != nil {
			js.Tree = s.Tree.String()
		}
		out.Sentences[i] = js
	}
	for id := 0; id < doc.MentionCount(); id++ {
		m, ok := doc.Mention(id)
		if !ok {
			continue
		}
		jm := Mention{
			Sentence:          m.SentNum,
			Start:             m.Start,
			End:               m.End,
			Head:              m.HeadIndex,
			Type:              m.Type.String(),
			Number:            m.Number.String(),
			Gender:            m.Gender.String(),
			Animacy:           m.Animacy.String(),
			Person:            m.Person.String(),
			NER:               m.NER,
			Subject:           m.IsSubject,
			DirectObject:      m.IsDirectObject,
			IndirectObject:    m.IsIndirectObject,
			PrepositionObject: m.IsPrepositionObject,
			Generic:           m.Generic,
			Speaker:           m.Speaker,
			Utterance:         m.Utterance,
			Paragraph:         m.Paragraph,
		}
		if m.DependingVerb >= 0 {
			v := m.DependingVerb
			jm.Verb = &v
		}
		if m.GoldClusterID >= 0 {
			g := m.GoldClusterID
			jm.Gold = &g
		}
		out.Mentions = append(out.Mentions, jm)
	}
	return out
}

// Decode reads every document in r.
func Decode(r io.Reader) ([]*coref.Document, error) {
	dec := json.NewDecoder(r)
	var docs []*coref.Document
	for {
		var d Document
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", len(docs), err)
		}
		doc, err := d.Build()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

// ReadFile decodes the documents of a file.
func ReadFile(path string) ([]*coref.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open documents: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes doc as one JSON line.
func Encode(w io.Writer, doc *coref.Document) error {
	return json.NewEncoder(w).Encode(FromDocument(doc))
}

// ChainMention is a mention in a result chain.
type ChainMention struct {
	ID       int    `json:"id"`
	Sentence int    `json:"sentence"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Text     string `json:"text"`
}

// Chain is one entity of a result.
type Chain struct {
	ID             int            `json:"id"`
	Representative string         `json:"representative"`
	Mentions       []ChainMention `json:"mentions"`
}

// Result is the JSON form of one resolved document.
type Result struct {
	RunID  string  `json:"run_id,omitempty"`
	ID     string  `json:"id"`
	Part   int     `json:"part"`
	Chains []Chain `json:"chains"`
}

// NewResult orders chains by id and their mentions by document position.
func NewResult(runID string, doc *coref.Document, chains map[int]*coref.Chain) *Result {
	res := &Result{RunID: runID, ID: doc.ID, Part: doc.Part, Chains: make([]Chain, 0, len(chains))}
	for id, c := range chains {
		jc := Chain{ID: id}
		if c.Representative != nil {
			jc.Representative = c.Representative.SpanString()
		}
		ms := make([]*coref.Mention, len(c.Mentions))
		copy(ms, c.Mentions)
		sort.Slice(ms, func(i, j int) bool { return ms[i].AppearsEarlierThan(ms[j]) })
		for _, m := range ms {
			jc.Mentions = append(jc.Mentions, ChainMention{
				ID: m.ID, Sentence: m.SentNum, Start: m.Start, End: m.End, Text: m.SpanString(),
			})
		}
		res.Chains = append(res.Chains, jc)
	}
	sort.Slice(res.Chains, func(i, j int) bool { return res.Chains[i].ID < res.Chains[j].ID })
	return res
}

// WriteResult writes the chains of doc as one JSON line.
func WriteResult(w io.Writer, runID string, doc *coref.Document, chains map[int]*coref.Chain) error {
	return json.NewEncoder(w).Encode(NewResult(runID, doc, chains))
}

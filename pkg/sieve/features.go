package sieve

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/math/vector"
	"github.com/orneryd/corefsieve/pkg/rules"
)

// Features is a sparse named feature vector. Absent features are zero.
type Features map[string]float64

func (f Features) flag(name string, on bool) {
	if on {
		f[name] = 1
	}
}

// Classifier scores a mention pair. Probability returns P(coreferent).
type Classifier interface {
	Probability(f Features) (float64, error)
}

// Logistic is a logistic-regression classifier over named features.
type Logistic struct {
	Bias    float64            `yaml:"bias"`
	Weights map[string]float64 `yaml:"weights"`
}

// Probability implements Classifier.
func (l *Logistic) Probability(f Features) (float64, error) {
	z := l.Bias
	for name, v := range f {
		z += l.Weights[name] * v
	}
	if math.IsNaN(z) {
		return 0, fmt.Errorf("logistic: score is NaN")
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// ParseLogistic decodes a YAML model:
//
//	bias: -2.5
//	weights:
//	  DCOREF-EXACT-STRING: 4.1
//	  SENTENCE-DIST: -0.3
func ParseLogistic(data []byte) (*Logistic, error) {
	var l Logistic
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing logistic model: %w", err)
	}
	if l.Weights == nil {
		l.Weights = make(map[string]float64)
	}
	return &l, nil
}

// LoadLogistic reads a YAML model file.
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading logistic model: %w", err)
	}
	return ParseLogistic(data)
}

func checkMention(doc *coref.Document, m *coref.Mention) error {
	switch {
	case m.Sentence == nil:
		return fmt.Errorf("%w: mention %d has no sentence", ErrFeatureExtraction, m.ID)
	case m.Start < 0 || m.End > len(m.Sentence.Tokens) || m.Start >= m.End:
		return fmt.Errorf("%w: mention %d span [%d,%d)", ErrFeatureExtraction, m.ID, m.Start, m.End)
	case m.HeadIndex < m.Start || m.HeadIndex >= m.End:
		return fmt.Errorf("%w: mention %d head %d outside span", ErrFeatureExtraction, m.ID, m.HeadIndex)
	case doc.ClusterOf(m) == nil:
		return fmt.Errorf("%w: mention %d has no cluster", ErrFeatureExtraction, m.ID)
	}
	return nil
}

// ExtractFeatures describes the pair (m, a): distances, positions, roles,
// shapes, agreement, the deterministic rule indicators (DCOREF-*), lexical
// and part-of-speech matches, and word-vector cosines.
func ExtractFeatures(doc *coref.Document, env *Env, m, a *coref.Mention) (Features, error) {
	if err := checkMention(doc, m); err != nil {
		return nil, err
	}
	if err := checkMention(doc, a); err != nil {
		return nil, err
	}
	d := env.Dicts
	cm, ca := doc.ClusterOf(m), doc.ClusterOf(a)
	f := make(Features, 64)

	// Distances.
	f["SENTENCE-DIST"] = float64(abs(m.SentNum - a.SentNum))
	f["MENTION-DIST"] = float64(abs(m.Num - a.Num))
	f["UTTERANCE-DIST"] = float64(abs(m.Utterance - a.Utterance))
	if m.SameSentence(a) {
		f["SAME-SENTENCE"] = 1
		f["TOKEN-DIST"] = float64(abs(m.Start - a.Start))
	}
	f.flag("SAME-SPEAKER", rules.SameSpeaker(doc, m, a))

	// Positions, roles and shapes.
	for prefix, x := range map[string]*coref.Mention{"M": m, "A": a} {
		f[prefix+"-POSITION"] = float64(x.Start) / float64(len(x.Sentence.Tokens))
		f[prefix+"-LENGTH"] = float64(x.End - x.Start)
		f[prefix+"-TYPE="+x.Type.String()] = 1
		f[prefix+"-NER="+x.NamedEntity()] = 1
		f[prefix+"-PERSON="+x.Person.String()] = 1
		f[prefix+"-HEAD-POS="+x.HeadToken().POS] = 1
		f.flag(prefix+"-SUBJECT", x.IsSubject)
		f.flag(prefix+"-OBJECT", x.IsDirectObject || x.IsIndirectObject || x.IsPrepositionObject)
		f.flag(prefix+"-GENERIC", x.Generic)
		f.flag(prefix+"-COORDINATED", x.IsCoordinated())
	}

	// Agreement.
	f.flag("NUMBERS-AGREE", m.NumbersAgree(a))
	f.flag("GENDERS-AGREE", m.GendersAgree(a))
	f.flag("ANIMACIES-AGREE", m.AnimaciesAgree(a))
	f.flag("ATTRIBUTES-AGREE", rules.AttributesAgree(cm, ca, env.ignoreGender()))
	f.flag("SAME-NER", m.NamedEntity() == a.NamedEntity())

	// Deterministic rule indicators.
	f.flag("DCOREF-EXACT-STRING", rules.ExactStringMatch(doc, cm, ca, d))
	f.flag("DCOREF-RELAXED-EXACT-STRING", rules.RelaxedExactStringMatch(doc, m, a, d))
	f.flag("DCOREF-APPOSITION", rules.IsApposition(cm, ca, m, a, env.ignoreGender()))
	f.flag("DCOREF-PREDICATE-NOMINATIVE", rules.IsPredicateNominatives(cm, ca, m, a, env.ignoreGender()))
	f.flag("DCOREF-ACRONYM", rules.EntityIsAcronym(doc, cm, ca))
	f.flag("DCOREF-RELATIVE-PRONOUN", rules.IsRelativePronoun(m, a))
	f.flag("DCOREF-DEMONYM", rules.IsDemonym(m, a, d))
	f.flag("DCOREF-ROLE-APPOSITION", rules.RoleAppositive(cm, ca, m, a, d, env.ignoreGender()))
	f.flag("DCOREF-INCLUSION-HEAD", rules.HeadsAgree(ca, m, a, d))
	f.flag("DCOREF-RELAXED-HEAD", rules.RelaxedHeadsAgree(m, a))
	f.flag("DCOREF-WORDS-INCLUDED", rules.WordsIncluded(cm, ca, m))
	f.flag("DCOREF-INCOMPATIBLE-MODIFIER", rules.HaveIncompatibleModifier(cm, ca))
	f.flag("DCOREF-PROPER-HEAD-LAST-WORD", rules.SameProperHeadLastWord(cm, ca))
	f.flag("DCOREF-DIFFERENT-LOCATION", rules.HaveDifferentLocation(m, a, d))
	f.flag("DCOREF-NUMBER-IN-MENTION", rules.NumberInLaterMention(m, a))
	f.flag("DCOREF-I-WITHIN-I", rules.IWithinI(m, a, d))
	f.flag("DCOREF-PERSON-DISAGREE", rules.PersonDisagree(doc, m, a))
	f.flag("DCOREF-SUBJECT-OBJECT", rules.SubjectObject(m, a))
	f.flag("DCOREF-SPEAKER", rules.IsSpeaker(doc, m, a))
	f.flag("DCOREF-CONTEXT-INCOMPATIBLE", rules.ContextIncompatible(m, a, d))
	for col := 1; col <= 4; col++ {
		f.flag(fmt.Sprintf("DCOREF-COREF-DICT-%d", col), rules.CorefDictionary(m, a, d, col, 2))
	}

	// Lexical matches.
	mw, aw := m.Words(), a.Words()
	mh, ah := m.HeadToken(), a.HeadToken()
	f.flag("HEAD-MATCH", m.HeadString == a.HeadString)
	f.flag("HEAD-LEMMA-MATCH", strings.EqualFold(mh.LemmaOrWord(), ah.LemmaOrWord()))
	f.flag("HEAD-POS-MATCH", mh.POS == ah.POS)
	f.flag("FIRST-WORD-MATCH", strings.EqualFold(mw[0].Word, aw[0].Word))
	f.flag("LAST-WORD-MATCH", strings.EqualFold(mw[len(mw)-1].Word, aw[len(aw)-1].Word))
	f.flag("SPAN-MATCH", m.LowerSpan() == a.LowerSpan())

	addVectorFeatures(f, env, m, a)
	return f, nil
}

// addVectorFeatures adds cosines for head, boundary and neighbor words and
// for the span averages. Missing embeddings leave a feature out.
func addVectorFeatures(f Features, env *Env, m, a *coref.Mention) {
	if env.Dicts == nil || env.Dicts.Vectors == nil {
		return
	}
	vec := func(t coref.Token) []float32 {
		if t.Word == "" {
			return nil
		}
		v, ok := env.Dicts.Vector(t.Word)
		if !ok {
			return nil
		}
		return v
	}
	cos := func(name string, x, y []float32) {
		if x != nil && y != nil {
			f[name] = vector.CosineSimilarity(x, y)
		}
	}
	neighbor := func(x *coref.Mention, i int) coref.Token {
		if i < 0 || i >= len(x.Sentence.Tokens) {
			return coref.Token{}
		}
		return x.Sentence.Tokens[i]
	}
	mean := func(x *coref.Mention) []float32 {
		var vs [][]float32
		for _, t := range x.Words() {
			vs = append(vs, vec(t))
		}
		return vector.Mean(vs...)
	}

	mw, aw := m.Words(), a.Words()
	cos("COS-HEAD", vec(m.HeadToken()), vec(a.HeadToken()))
	cos("COS-FIRST", vec(mw[0]), vec(aw[0]))
	cos("COS-LAST", vec(mw[len(mw)-1]), vec(aw[len(aw)-1]))
	cos("COS-PRECEDING", vec(neighbor(m, m.Start-1)), vec(neighbor(a, a.Start-1)))
	cos("COS-FOLLOWING", vec(neighbor(m, m.End)), vec(neighbor(a, a.End)))
	cos("COS-SPAN", mean(m), mean(a))
}

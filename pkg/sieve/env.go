// Package sieve implements the resolution passes: candidate selection,
// the rule cascade run by each deterministic sieve, and the statistical
// sieve that merges on classifier probability.
//
// Sieves form a closed set. Each is built once from its kind and settings
// and then applied to any number of documents:
//
//	s, err := sieve.NewRuleSieve(sieve.KindExactStringMatch, sieve.Settings{MaxSentenceDistance: -1})
//	if err != nil {
//		return err
//	}
//	stats, err := s.Resolve(doc, &sieve.Env{Dicts: dict.English()})
//
// A sieve mutates the document it resolves and must not be run on one
// document from several goroutines. Distinct documents may be resolved
// concurrently.
package sieve

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
	"github.com/orneryd/corefsieve/pkg/logging"
)

var (
	// ErrUnknownSieve is returned for sieve names outside the closed set.
	ErrUnknownSieve = errors.New("sieve: unknown sieve")

	// ErrUnknownRule is returned for unknown rule names.
	ErrUnknownRule = errors.New("sieve: unknown rule")

	// ErrFeatureExtraction is returned when a mention pair cannot be
	// turned into features, typically because of malformed metadata.
	ErrFeatureExtraction = errors.New("sieve: feature extraction failed")

	// ErrNoClassifier is returned by a statistical sieve without a model.
	ErrNoClassifier = errors.New("sieve: no classifier")
)

// Language selects language-specific behavior.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// ParseLanguage accepts language codes and English names.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return English, true
	case "zh", "chinese":
		return Chinese, true
	}
	return "", false
}

// NameMatcher decides whether two mentions name the same entity. It is an
// optional capability: a nil matcher makes the name-match rule never fire.
type NameMatcher interface {
	Equivalent(m, a *coref.Mention) bool
}

// Env is the shared context of one resolution run.
type Env struct {
	Dicts    *dict.Dictionaries
	Language Language
	// ExemptNestingGenres lists document genres in which nested mentions
	// may corefer.
	ExemptNestingGenres []string
	NameMatcher         NameMatcher
	// Filter restricts candidate pairs for sieves honoring it. Nil allows
	// every pair.
	Filter Candidates
	Logger *log.Logger
}

func (e *Env) logger() *log.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

func (e *Env) ignoreGender() bool { return e.Language == Chinese }

func (e *Env) exemptGenre(genre string) bool {
	for _, g := range e.ExemptNestingGenres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// PersonNameMatcher treats two PERSON mentions as the same person when the
// name words of one, titles removed, end the name words of the other
// ("Barack Obama" and "President Obama").
type PersonNameMatcher struct {
	// Titles are lower-cased honorifics and role words ignored in names.
	Titles dict.Set
}

// Equivalent implements NameMatcher.
func (p PersonNameMatcher) Equivalent(m, a *coref.Mention) bool {
	if m.IsPronominal() || a.IsPronominal() {
		return false
	}
	if !strings.HasPrefix(m.NamedEntity(), "PER") || !strings.HasPrefix(a.NamedEntity(), "PER") {
		return false
	}
	mn, an := p.nameWords(m), p.nameWords(a)
	if len(mn) == 0 || len(an) == 0 {
		return false
	}
	short, long := mn, an
	if len(short) > len(long) {
		short, long = long, short
	}
	off := len(long) - len(short)
	for i, w := range short {
		if long[off+i] != w {
			return false
		}
	}
	return true
}

func (p PersonNameMatcher) nameWords(m *coref.Mention) []string {
	var out []string
	for _, t := range m.Words() {
		if !strings.HasPrefix(t.POS, "NNP") {
			continue
		}
		w := coref.Normalize(t.Word)
		if p.Titles.Has(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

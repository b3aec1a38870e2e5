// Package dict holds the lexical resources consulted during resolution:
// pronoun and demonym tables, coreference-dictionary pair counts, named
// entity signatures and word vectors.
//
// The tables are read-only once built and may be shared by concurrent
// resolution runs. English() returns built-in defaults; LoadDir overlays
// resource files on top of them.
package dict

import "sort"

// Set is a string set.
type Set map[string]struct{}

// NewSet builds a set from words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports membership; a nil set is empty.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Add inserts w.
func (s Set) Add(w string) { s[w] = struct{}{} }

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// PairCounts exposes corpus co-occurrence counts of coreferent word
// patterns. Column is 1-based and selects one of the four split patterns
// (head lemma, closest premodifier + head, all premodifiers + head, full
// span).
type PairCounts interface {
	Count(column int, a, b string) float64
	PMI(a, b string) (float64, bool)
}

// Signatures exposes, per named-entity head word, the rank of its context
// words by association strength. Rank 0 is the strongest association.
type Signatures interface {
	Rank(head, word string) (int, bool)
	HasSignature(head string) bool
}

// Vectors exposes word embeddings.
type Vectors interface {
	Vector(word string) ([]float32, bool)
}

// Dictionaries bundles every lexical resource.
type Dictionaries struct {
	FirstPersonPronouns  Set
	SecondPersonPronouns Set
	ThirdPersonPronouns  Set
	ReflexivePronouns    Set
	RelativePronouns     Set
	PossessivePronouns   Set
	AllPronouns          Set
	IndefinitePronouns   Set
	// NotOrganizationPRP are pronouns that cannot refer to an organization.
	NotOrganizationPRP Set

	// Demonyms maps a lower-cased place name to its demonyms.
	Demonyms   map[string][]string
	DemonymSet Set
	// StatesAbbreviation maps state abbreviations to full names.
	StatesAbbreviation map[string]string
	// PersonTitles are honorifics and role nouns ignored by name matching.
	PersonTitles Set

	CorefDict  PairCounts
	Signatures Signatures
	Vectors    Vectors
}

// DemonymsOf returns the demonyms of a lower-cased place name.
func (d *Dictionaries) DemonymsOf(place string) []string { return d.Demonyms[place] }

// IsState reports whether s is a state name or abbreviation.
func (d *Dictionaries) IsState(s string) bool {
	if _, ok := d.StatesAbbreviation[s]; ok {
		return true
	}
	for _, full := range d.StatesAbbreviation {
		if full == s {
			return true
		}
	}
	return false
}

// AddDemonym registers demonyms for a place, keeping DemonymSet current.
func (d *Dictionaries) AddDemonym(place string, demonyms ...string) {
	if d.Demonyms == nil {
		d.Demonyms = make(map[string][]string)
	}
	if d.DemonymSet == nil {
		d.DemonymSet = make(Set)
	}
	d.Demonyms[place] = append(d.Demonyms[place], demonyms...)
	for _, dn := range demonyms {
		d.DemonymSet.Add(dn)
	}
}

// PairCount returns the count for a pattern pair, zero without a
// dictionary.
func (d *Dictionaries) PairCount(column int, a, b string) float64 {
	if d.CorefDict == nil {
		return 0
	}
	return d.CorefDict.Count(column, a, b)
}

// PairPMI returns the PMI of a head pair and whether it is known.
func (d *Dictionaries) PairPMI(a, b string) (float64, bool) {
	if d.CorefDict == nil {
		return 0, false
	}
	return d.CorefDict.PMI(a, b)
}

// SignatureRank returns the rank of word in head's signature.
func (d *Dictionaries) SignatureRank(head, word string) (int, bool) {
	if d.Signatures == nil {
		return 0, false
	}
	return d.Signatures.Rank(head, word)
}

// HasSignature reports whether head has a signature table.
func (d *Dictionaries) HasSignature(head string) bool {
	return d.Signatures != nil && d.Signatures.HasSignature(head)
}

// Vector returns the embedding of word.
func (d *Dictionaries) Vector(word string) ([]float32, bool) {
	if d.Vectors == nil {
		return nil, false
	}
	return d.Vectors.Vector(word)
}

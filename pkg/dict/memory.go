package dict

import (
	"sort"
	"strings"
)

// MemoryPairCounts is an in-memory PairCounts.
type MemoryPairCounts struct {
	counts [4]map[[2]string]float64
	pmi    map[[2]string]float64
}

// NewMemoryPairCounts returns an empty table.
func NewMemoryPairCounts() *MemoryPairCounts {
	p := &MemoryPairCounts{pmi: make(map[[2]string]float64)}
	for i := range p.counts {
		p.counts[i] = make(map[[2]string]float64)
	}
	return p
}

// Set stores the count of (a, b) in the 1-based column.
func (p *MemoryPairCounts) Set(column int, a, b string, count float64) {
	if column < 1 || column > len(p.counts) {
		return
	}
	p.counts[column-1][[2]string{strings.ToLower(a), strings.ToLower(b)}] = count
}

// SetPMI stores the PMI of a head pair.
func (p *MemoryPairCounts) SetPMI(a, b string, v float64) {
	p.pmi[[2]string{strings.ToLower(a), strings.ToLower(b)}] = v
}

func (p *MemoryPairCounts) Count(column int, a, b string) float64 {
	if column < 1 || column > len(p.counts) {
		return 0
	}
	return p.counts[column-1][[2]string{a, b}]
}

func (p *MemoryPairCounts) PMI(a, b string) (float64, bool) {
	v, ok := p.pmi[[2]string{a, b}]
	return v, ok
}

// Len returns the number of stored pairs across columns.
func (p *MemoryPairCounts) Len() int {
	n := len(p.pmi)
	for _, c := range p.counts {
		n += len(c)
	}
	return n
}

// MemorySignatures is an in-memory Signatures holding precomputed ranks.
type MemorySignatures struct {
	ranks map[string]map[string]int
}

// NewMemorySignatures returns an empty table.
func NewMemorySignatures() *MemorySignatures {
	return &MemorySignatures{ranks: make(map[string]map[string]int)}
}

// SetCounts replaces head's signature with ranks derived from counts:
// the highest count gets rank 0, ties broken alphabetically.
func (s *MemorySignatures) SetCounts(head string, counts map[string]float64) {
	s.ranks[head] = RankCounts(counts)
}

// SetRanks stores precomputed ranks for head.
func (s *MemorySignatures) SetRanks(head string, ranks map[string]int) {
	s.ranks[head] = ranks
}

func (s *MemorySignatures) Rank(head, word string) (int, bool) {
	r, ok := s.ranks[head][word]
	return r, ok
}

func (s *MemorySignatures) HasSignature(head string) bool {
	_, ok := s.ranks[head]
	return ok
}

// RankCounts converts counts into ranks, 0 for the largest count.
func RankCounts(counts map[string]float64) map[string]int {
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	ranks := make(map[string]int, len(words))
	for i, w := range words {
		ranks[w] = i
	}
	return ranks
}

// MemoryVectors is an in-memory Vectors.
type MemoryVectors struct {
	vecs map[string][]float32
}

// NewMemoryVectors returns an empty table.
func NewMemoryVectors() *MemoryVectors {
	return &MemoryVectors{vecs: make(map[string][]float32)}
}

// Set stores the vector of a lower-cased word.
func (v *MemoryVectors) Set(word string, vec []float32) { v.vecs[strings.ToLower(word)] = vec }

func (v *MemoryVectors) Vector(word string) ([]float32, bool) {
	vec, ok := v.vecs[strings.ToLower(word)]
	return vec, ok
}

// Len returns the vocabulary size.
func (v *MemoryVectors) Len() int { return len(v.vecs) }

package coref

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	// ErrMalformedMention is returned when a mention's span or sentence
	// reference does not fit the document.
	ErrMalformedMention = errors.New("coref: malformed mention")

	// ErrPartition is returned by CheckPartition when clusters no longer
	// partition the mentions.
	ErrPartition = errors.New("coref: clusters do not partition mentions")
)

// pair is an unordered cluster-id pair.
type pair struct{ lo, hi int }

func newPair(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Document holds the mentions of one text together with all mutable
// resolution state: clusters, speakers and the per-run caches consulted by
// the sieves. A Document is not safe for concurrent use.
type Document struct {
	ID    string
	Part  int
	Genre string
	Type  DocType

	Sentences []*Sentence
	// MentionsBySentence is ordered by sentence, then start offset (longer
	// span first on ties) once Finalize has run.
	MentionsBySentence [][]*Mention
	// Speakers maps an utterance number to its speaker annotation.
	Speakers map[int]string

	mentions     map[int]*Mention
	clusters     map[int]*Cluster
	nextMention  int
	nextCluster  int
	speakerInfo  map[string]*SpeakerInfo
	speakerPairs map[[2]int]struct{}
	incompatible map[pair]struct{}
	acronyms     map[pair]bool
	roleSet      IDSet
	finalized    bool
}

// NewDocument creates an empty document over the given sentences.
func NewDocument(id string, sentences []*Sentence) *Document {
	for i, s := range sentences {
		s.Index = i
	}
	return &Document{
		ID:                 id,
		Sentences:          sentences,
		MentionsBySentence: make([][]*Mention, len(sentences)),
		Speakers:           make(map[int]string),
		mentions:           make(map[int]*Mention),
		clusters:           make(map[int]*Cluster),
		speakerInfo:        make(map[string]*SpeakerInfo),
		speakerPairs:       make(map[[2]int]struct{}),
		incompatible:       make(map[pair]struct{}),
		acronyms:           make(map[pair]bool),
	}
}

// AddMention registers m under a fresh id and places it in a new singleton
// cluster. Mentions whose sentence index is out of range are kept aside and
// reported by Finalize.
func (d *Document) AddMention(m *Mention) int {
	m.ID = d.nextMention
	d.nextMention++
	d.mentions[m.ID] = m
	if m.SentNum >= 0 && m.SentNum < len(d.Sentences) {
		m.Sentence = d.Sentences[m.SentNum]
		d.MentionsBySentence[m.SentNum] = append(d.MentionsBySentence[m.SentNum], m)
	}
	c := newCluster(d.nextCluster)
	d.nextCluster++
	c.add(m)
	d.clusters[c.ID] = c
	d.finalized = false
	return m.ID
}

// Finalize validates mention spans, fills derived fields (head string,
// speaker, subtree, document order) and derives syntactic relations from
// the parse trees. It is idempotent.
func (d *Document) Finalize() error {
	if d.finalized {
		return nil
	}
	for _, id := range d.sortedMentionIDs() {
		m := d.mentions[id]
		if m.Sentence == nil {
			return fmt.Errorf("%w: mention %d references sentence %d of %d", ErrMalformedMention, m.ID, m.SentNum, len(d.Sentences))
		}
		if m.Start < 0 || m.End <= m.Start || m.End > len(m.Sentence.Tokens) {
			return fmt.Errorf("%w: mention %d span [%d,%d) in sentence of %d tokens", ErrMalformedMention, m.ID, m.Start, m.End, len(m.Sentence.Tokens))
		}
		head := m.HeadToken()
		if m.HeadString == "" {
			m.HeadString = Normalize(head.Word)
		}
		if m.Speaker == "" && head.Speaker != "" {
			m.Speaker = head.Speaker
			m.Utterance = head.Utterance
		}
		if m.SubTree == nil && m.Sentence.Tree != nil {
			m.SubTree = m.Sentence.Tree.Covering(m.Start, m.End)
		}
		if m.Speaker != "" && m.SpeakerInfo == nil {
			m.SpeakerInfo = d.speaker(m.Speaker)
		}
		if n, err := strconv.Atoi(m.Speaker); err == nil {
			if _, ok := d.mentions[n]; ok && n != m.ID {
				d.AddSpeakerPair(m.ID, n)
			}
		}
	}

	num := 0
	for s, ms := range d.MentionsBySentence {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].AppearsEarlierThan(ms[j]) })
		for _, m := range ms {
			m.Num = num
			num++
		}
		d.findSyntacticRelations(s)
	}
	d.finalized = true
	return nil
}

func (d *Document) sortedMentionIDs() []int {
	ids := make([]int, 0, len(d.mentions))
	for id := range d.mentions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (d *Document) speaker(id string) *SpeakerInfo {
	if si, ok := d.speakerInfo[id]; ok {
		return si
	}
	si := &SpeakerInfo{ID: id, Name: id}
	if n, err := strconv.Atoi(id); err == nil {
		if sm, ok := d.mentions[n]; ok {
			si.Name = sm.SpanString()
			si.MentionIDs = append(si.MentionIDs, n)
		}
	}
	d.speakerInfo[id] = si
	return si
}

// Mention returns the mention with the given id.
func (d *Document) Mention(id int) (*Mention, bool) {
	m, ok := d.mentions[id]
	return m, ok
}

// Mentions returns every mention in document order.
func (d *Document) Mentions() []*Mention {
	out := make([]*Mention, 0, len(d.mentions))
	for _, ms := range d.MentionsBySentence {
		out = append(out, ms...)
	}
	return out
}

// MentionCount returns the number of registered mentions.
func (d *Document) MentionCount() int { return len(d.mentions) }

// Cluster returns the live cluster with the given id.
func (d *Document) Cluster(id int) (*Cluster, bool) {
	c, ok := d.clusters[id]
	return c, ok
}

// ClusterOf returns the cluster currently holding m.
func (d *Document) ClusterOf(m *Mention) *Cluster { return d.clusters[m.ClusterID] }

// Clusters returns the live clusters ordered by id.
func (d *Document) Clusters() []*Cluster {
	out := make([]*Cluster, 0, len(d.clusters))
	for _, c := range d.clusters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsCoref reports whether two mentions currently share a cluster.
func (d *Document) IsCoref(a, b *Mention) bool { return a.ClusterID == b.ClusterID }

// Merge joins the cluster of mention mentionID into the cluster of mention
// antecedentID. The antecedent's cluster id survives; the other id is
// deleted and its incompatibility entries and positive acronym verdicts
// are copied onto the survivor. It returns the surviving id and whether
// anything changed.
func (d *Document) Merge(mentionID, antecedentID int) (int, bool) {
	m, ok1 := d.mentions[mentionID]
	a, ok2 := d.mentions[antecedentID]
	if !ok1 || !ok2 {
		return -1, false
	}
	to, from := d.clusters[a.ClusterID], d.clusters[m.ClusterID]
	if to == nil || from == nil {
		return -1, false
	}
	if to.ID == from.ID {
		return to.ID, false
	}
	loser := from.ID
	to.absorb(from)
	delete(d.clusters, loser)
	d.rekey(to.ID, loser)
	return to.ID, true
}

// rekey copies incompatibilities and positive acronym verdicts naming loser
// onto survivor. The old entries stay in place.
func (d *Document) rekey(survivor, loser int) {
	var incompat []pair
	for p := range d.incompatible {
		if other, ok := p.other(loser); ok && other != survivor {
			incompat = append(incompat, newPair(other, survivor))
		}
	}
	for _, p := range incompat {
		d.incompatible[p] = struct{}{}
	}

	// Negative verdicts stay behind; the merged cluster is re-evaluated.
	var acr []pair
	for p, v := range d.acronyms {
		if other, ok := p.other(loser); ok && v && other != survivor {
			acr = append(acr, newPair(other, survivor))
		}
	}
	for _, p := range acr {
		d.acronyms[p] = true
	}
}

func (p pair) other(id int) (int, bool) {
	switch id {
	case p.lo:
		return p.hi, true
	case p.hi:
		return p.lo, true
	}
	return 0, false
}

// AddIncompatible records that two clusters must never merge.
func (d *Document) AddIncompatible(c1, c2 int) {
	d.incompatible[newPair(c1, c2)] = struct{}{}
}

// MarkIncompatible records the clusters of two mentions as incompatible.
func (d *Document) MarkIncompatible(m, a *Mention) { d.AddIncompatible(m.ClusterID, a.ClusterID) }

// IsIncompatible reports whether the cluster pair was marked incompatible.
func (d *Document) IsIncompatible(c1, c2 int) bool {
	_, ok := d.incompatible[newPair(c1, c2)]
	return ok
}

// IncompatibleCount returns the number of recorded pairs.
func (d *Document) IncompatibleCount() int { return len(d.incompatible) }

// AcronymDecision returns a cached acronym verdict for two clusters.
func (d *Document) AcronymDecision(c1, c2 int) (value, ok bool) {
	value, ok = d.acronyms[newPair(c1, c2)]
	return value, ok
}

// SetAcronymDecision caches an acronym verdict for two clusters.
func (d *Document) SetAcronymDecision(c1, c2 int, value bool) {
	d.acronyms[newPair(c1, c2)] = value
}

// MarkRole adds a mention to the role set.
func (d *Document) MarkRole(id int) { d.roleSet.Add(id) }

// InRoleSet reports whether a mention was consumed as a role appositive.
func (d *Document) InRoleSet(id int) bool { return d.roleSet.Has(id) }

// AddSpeakerPair records that speakerID is the mention naming the speaker
// of mention mentionID.
func (d *Document) AddSpeakerPair(mentionID, speakerID int) {
	d.speakerPairs[[2]int{mentionID, speakerID}] = struct{}{}
}

// IsSpeakerPair reports whether a was recorded as the speaker of m.
func (d *Document) IsSpeakerPair(m, a *Mention) bool {
	_, ok := d.speakerPairs[[2]int{m.ID, a.ID}]
	return ok
}

// SpeakerCluster resolves a speaker annotation to a cluster id when the
// annotation is the id of a mention in this document.
func (d *Document) SpeakerCluster(speaker string) (int, bool) {
	n, err := strconv.Atoi(speaker)
	if err != nil {
		return 0, false
	}
	sm, ok := d.mentions[n]
	if !ok {
		return 0, false
	}
	return sm.ClusterID, true
}

// CheckPartition verifies that every mention sits in exactly one live
// cluster and that cluster membership matches each mention's ClusterID.
func (d *Document) CheckPartition() error {
	seen := make(map[int]int, len(d.mentions))
	for _, c := range d.clusters {
		if len(c.Mentions) == 0 {
			return fmt.Errorf("%w: cluster %d is empty", ErrPartition, c.ID)
		}
		for _, m := range c.Mentions {
			if prev, dup := seen[m.ID]; dup {
				return fmt.Errorf("%w: mention %d in clusters %d and %d", ErrPartition, m.ID, prev, c.ID)
			}
			if m.ClusterID != c.ID {
				return fmt.Errorf("%w: mention %d points at %d but sits in %d", ErrPartition, m.ID, m.ClusterID, c.ID)
			}
			seen[m.ID] = c.ID
		}
	}
	if len(seen) != len(d.mentions) {
		return fmt.Errorf("%w: %d of %d mentions clustered", ErrPartition, len(seen), len(d.mentions))
	}
	return nil
}

// Chain is the output view of a cluster.
type Chain struct {
	ID             int
	Mentions       []*Mention
	Representative *Mention
}

// Chains extracts coreference chains keyed by cluster id, optionally
// dropping single-mention clusters.
func (d *Document) Chains(removeSingletons bool) map[int]*Chain {
	out := make(map[int]*Chain, len(d.clusters))
	for id, c := range d.clusters {
		if removeSingletons && len(c.Mentions) < 2 {
			continue
		}
		ms := make([]*Mention, len(c.Mentions))
		copy(ms, c.Mentions)
		out[id] = &Chain{ID: id, Mentions: ms, Representative: c.Representative}
	}
	return out
}

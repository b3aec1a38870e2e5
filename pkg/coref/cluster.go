package coref

import (
	"sort"
	"strings"
)

// Cluster is a set of mentions hypothesized to denote one entity, with the
// union of their attributes kept current on every membership change.
type Cluster struct {
	ID       int
	Mentions []*Mention

	Numbers   map[Number]struct{}
	Genders   map[Gender]struct{}
	Animacies map[Animacy]struct{}
	NERs      map[string]struct{}
	// Words holds the lower-cased words of every member span.
	Words map[string]struct{}
	// Heads holds the member head strings.
	Heads map[string]struct{}

	First          *Mention
	Representative *Mention
}

func newCluster(id int) *Cluster {
	return &Cluster{
		ID:        id,
		Numbers:   make(map[Number]struct{}),
		Genders:   make(map[Gender]struct{}),
		Animacies: make(map[Animacy]struct{}),
		NERs:      make(map[string]struct{}),
		Words:     make(map[string]struct{}),
		Heads:     make(map[string]struct{}),
	}
}

// add inserts m, keeps members in document order and folds its attributes
// into the aggregate sets.
func (c *Cluster) add(m *Mention) {
	c.Mentions = append(c.Mentions, m)
	sort.SliceStable(c.Mentions, func(i, j int) bool {
		return c.Mentions[i].AppearsEarlierThan(c.Mentions[j])
	})
	m.ClusterID = c.ID

	c.Numbers[m.Number] = struct{}{}
	c.Genders[m.Gender] = struct{}{}
	c.Animacies[m.Animacy] = struct{}{}
	c.NERs[m.NamedEntity()] = struct{}{}
	for _, t := range m.Words() {
		c.Words[strings.ToLower(t.Word)] = struct{}{}
	}
	c.Heads[m.HeadString] = struct{}{}

	if c.First == nil || m.AppearsEarlierThan(c.First) {
		c.First = m
	}
	if moreRepresentative(m, c.Representative) {
		c.Representative = m
	}
}

// absorb moves every mention of other into c.
func (c *Cluster) absorb(other *Cluster) {
	for _, m := range other.Mentions {
		c.add(m)
	}
	other.Mentions = nil
}

// Size returns the number of member mentions.
func (c *Cluster) Size() int { return len(c.Mentions) }

// Contains reports whether the mention id is a member.
func (c *Cluster) Contains(id int) bool {
	for _, m := range c.Mentions {
		if m.ID == id {
			return true
		}
	}
	return false
}

// HasNumber reports whether any member carries n.
func (c *Cluster) HasNumber(n Number) bool { _, ok := c.Numbers[n]; return ok }

// HasGender reports whether any member carries g.
func (c *Cluster) HasGender(g Gender) bool { _, ok := c.Genders[g]; return ok }

// HasAnimacy reports whether any member carries a.
func (c *Cluster) HasAnimacy(a Animacy) bool { _, ok := c.Animacies[a]; return ok }

// HasNER reports whether any member carries the entity type.
func (c *Cluster) HasNER(ner string) bool { _, ok := c.NERs[ner]; return ok }

// moreRepresentative prefers proper over nominal over list over pronominal
// mentions, then longer premodification, then earlier position.
func moreRepresentative(m, cur *Mention) bool {
	if cur == nil {
		return true
	}
	if m.Type != cur.Type {
		return m.Type.specificity() > cur.Type.specificity()
	}
	ml, cl := m.HeadIndex-m.Start, cur.HeadIndex-cur.Start
	if ml != cl {
		return ml > cl
	}
	if m.SentNum != cur.SentNum {
		return m.SentNum < cur.SentNum
	}
	if m.HeadIndex != cur.HeadIndex {
		return m.HeadIndex < cur.HeadIndex
	}
	return m.Start < cur.Start
}

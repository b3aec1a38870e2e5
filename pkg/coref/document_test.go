package coref_test

import (
	"errors"
	"testing"

	"github.com/orneryd/corefsieve/pkg/coref"
	ct "github.com/orneryd/corefsieve/pkg/coref/coreftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Document Construction Tests
// =============================================================================

func TestAddMention(t *testing.T) {
	d := ct.Obama()

	t.Run("ids_are_sequential", func(t *testing.T) {
		for id := 0; id < 3; id++ {
			m, ok := d.Mention(id)
			require.True(t, ok)
			assert.Equal(t, id, m.ID)
		}
	})

	t.Run("each_mention_starts_singleton", func(t *testing.T) {
		assert.Len(t, d.Clusters(), 3)
		require.NoError(t, d.CheckPartition())
	})

	t.Run("head_string_filled", func(t *testing.T) {
		m, _ := d.Mention(0)
		assert.Equal(t, "obama", m.HeadString)
		he, _ := d.Mention(1)
		assert.Equal(t, "he", he.HeadString)
	})
}

func TestFinalize(t *testing.T) {
	t.Run("orders_mentions_and_assigns_num", func(t *testing.T) {
		s := ct.Sentence("the/DT big/JJ dog/NN and/CC the/DT cat/NN")
		d := ct.Document("order", []*coref.Sentence{s},
			ct.Mention(0, 4, 6, 5, coref.Nominal),
			ct.Mention(0, 0, 3, 2, coref.Nominal),
			ct.Mention(0, 0, 6, 2, coref.List),
		)
		ms := d.MentionsBySentence[0]
		require.Len(t, ms, 3)
		assert.Equal(t, [2]int{0, 6}, [2]int{ms[0].Start, ms[0].End})
		assert.Equal(t, [2]int{0, 3}, [2]int{ms[1].Start, ms[1].End})
		assert.Equal(t, [2]int{4, 6}, [2]int{ms[2].Start, ms[2].End})
		for i, m := range ms {
			assert.Equal(t, i, m.Num)
		}
	})

	t.Run("rejects_bad_span", func(t *testing.T) {
		s := ct.Sentence("one/CD two/CD")
		d := ct.NewUnfinalized("bad", []*coref.Sentence{s}, ct.Mention(0, 1, 5, 1, coref.Nominal))
		err := d.Finalize()
		require.Error(t, err)
		assert.True(t, errors.Is(err, coref.ErrMalformedMention))
	})

	t.Run("rejects_bad_sentence", func(t *testing.T) {
		s := ct.Sentence("one/CD")
		d := ct.NewUnfinalized("bad", []*coref.Sentence{s}, ct.Mention(3, 0, 1, 0, coref.Nominal))
		assert.ErrorIs(t, d.Finalize(), coref.ErrMalformedMention)
	})

	t.Run("speaker_from_head_token", func(t *testing.T) {
		s := ct.Sentence("I/PRP agree/VBP")
		s.Tokens[0].Speaker = "PER1"
		s.Tokens[0].Utterance = 2
		d := ct.Document("spk", []*coref.Sentence{s}, ct.Mention(0, 0, 1, 0, coref.Pronominal))
		m, _ := d.Mention(0)
		assert.Equal(t, "PER1", m.Speaker)
		assert.Equal(t, 2, m.Utterance)
		require.NotNil(t, m.SpeakerInfo)
		assert.Equal(t, "PER1", m.SpeakerInfo.Name)
	})
}

// =============================================================================
// Merge Tests
// =============================================================================

func TestMerge(t *testing.T) {
	t.Run("antecedent_cluster_survives", func(t *testing.T) {
		d := ct.Obama()
		he, _ := d.Mention(1)
		obama, _ := d.Mention(0)
		survivor, merged := d.Merge(he.ID, obama.ID)
		require.True(t, merged)
		assert.Equal(t, obama.ClusterID, survivor)
		assert.Equal(t, survivor, he.ClusterID)
		_, alive := d.Cluster(1)
		assert.False(t, alive)
		require.NoError(t, d.CheckPartition())
	})

	t.Run("same_cluster_is_noop", func(t *testing.T) {
		d := ct.Obama()
		d.Merge(1, 0)
		id, merged := d.Merge(1, 0)
		assert.False(t, merged)
		assert.Equal(t, 0, id)
	})

	t.Run("unknown_mention", func(t *testing.T) {
		d := ct.Obama()
		_, merged := d.Merge(7, 0)
		assert.False(t, merged)
	})

	t.Run("attributes_are_unioned", func(t *testing.T) {
		s := ct.Sentence("they/PRP saw/VBD it/PRP")
		d := ct.Document("attrs", []*coref.Sentence{s},
			ct.Mention(0, 0, 1, 0, coref.Pronominal, ct.Attrs(coref.Plural, coref.UnknownGender, coref.Animate)),
			ct.Mention(0, 2, 3, 2, coref.Pronominal, ct.Attrs(coref.Singular, coref.Neutral, coref.Inanimate)),
		)
		id, _ := d.Merge(1, 0)
		c, ok := d.Cluster(id)
		require.True(t, ok)
		assert.True(t, c.HasNumber(coref.Plural))
		assert.True(t, c.HasNumber(coref.Singular))
		assert.True(t, c.HasAnimacy(coref.Inanimate))
		assert.True(t, c.HasGender(coref.Neutral))
		assert.Contains(t, c.Words, "they")
		assert.Contains(t, c.Words, "it")
	})

	t.Run("representative_prefers_proper", func(t *testing.T) {
		d := ct.Obama()
		d.Merge(1, 0)
		c, _ := d.Cluster(0)
		assert.Equal(t, 0, c.Representative.ID)
		d.Merge(2, 1)
		assert.Equal(t, coref.Proper, c.Representative.Type)
		assert.Len(t, c.Mentions, 3)
	})
}

func TestMergeCommutativeMembership(t *testing.T) {
	members := func(d *coref.Document) [][]int {
		var out [][]int
		for _, c := range d.Clusters() {
			var ids []int
			for _, m := range c.Mentions {
				ids = append(ids, m.ID)
			}
			out = append(out, ids)
		}
		return out
	}

	ab := ct.Obama()
	ab.Merge(0, 1)
	ba := ct.Obama()
	ba.Merge(1, 0)

	assert.Equal(t, members(ab), members(ba))
	m0, _ := ab.Mention(0)
	n0, _ := ba.Mention(0)
	assert.Equal(t, 1, m0.ClusterID)
	assert.Equal(t, 0, n0.ClusterID)
}

func TestIncompatibleRekey(t *testing.T) {
	d := ct.Obama()
	d.AddIncompatible(1, 2)
	require.True(t, d.IsIncompatible(2, 1))

	// cluster 1 is absorbed by cluster 0; the history moves with it
	survivor, _ := d.Merge(1, 0)
	assert.True(t, d.IsIncompatible(survivor, 2))
	assert.True(t, d.IsIncompatible(1, 2), "old entries are kept")
	assert.Equal(t, 2, d.IncompatibleCount())
}

func TestAcronymCacheRekey(t *testing.T) {
	t.Run("positive_verdict_moves", func(t *testing.T) {
		d := ct.Obama()
		d.SetAcronymDecision(2, 1, true)
		d.Merge(1, 0)
		v, ok := d.AcronymDecision(0, 2)
		require.True(t, ok)
		assert.True(t, v)
	})

	t.Run("negative_verdict_stays_behind", func(t *testing.T) {
		d := ct.Obama()
		d.SetAcronymDecision(1, 2, false)
		d.Merge(1, 0)
		_, ok := d.AcronymDecision(0, 2)
		assert.False(t, ok, "survivor must be re-evaluated")
		v, ok := d.AcronymDecision(1, 2)
		require.True(t, ok, "old entries are kept")
		assert.False(t, v)
	})

	t.Run("survivor_verdict_not_overwritten", func(t *testing.T) {
		d := ct.Obama()
		d.SetAcronymDecision(0, 2, true)
		d.SetAcronymDecision(1, 2, false)
		d.Merge(1, 0)
		v, ok := d.AcronymDecision(0, 2)
		require.True(t, ok)
		assert.True(t, v)
	})
}

func TestChains(t *testing.T) {
	d := ct.Obama()
	d.Merge(1, 0)

	all := d.Chains(false)
	assert.Len(t, all, 2)

	nonSingleton := d.Chains(true)
	require.Len(t, nonSingleton, 1)
	ch := nonSingleton[0]
	assert.Equal(t, 0, ch.ID)
	require.Len(t, ch.Mentions, 2)
	assert.Equal(t, 0, ch.Mentions[0].ID)
	assert.Equal(t, 0, ch.Representative.ID)
}

func TestRoleSetAndSpeakers(t *testing.T) {
	d := ct.Obama()
	assert.False(t, d.InRoleSet(2))
	d.MarkRole(2)
	assert.True(t, d.InRoleSet(2))

	m, _ := d.Mention(1)
	a, _ := d.Mention(0)
	assert.False(t, d.IsSpeakerPair(m, a))
	d.AddSpeakerPair(1, 0)
	assert.True(t, d.IsSpeakerPair(m, a))

	cid, ok := d.SpeakerCluster("0")
	require.True(t, ok)
	assert.Equal(t, a.ClusterID, cid)
	_, ok = d.SpeakerCluster("PER0")
	assert.False(t, ok)
}

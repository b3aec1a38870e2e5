package rules

import (
	"strings"

	"github.com/orneryd/corefsieve/pkg/coref"
)

// SameSpeaker reports whether two mentions were uttered by one speaker.
// Annotations naming mentions are compared through their clusters.
func SameSpeaker(doc *coref.Document, m, a *coref.Mention) bool {
	if m.Speaker == "" || a.Speaker == "" {
		return false
	}
	mc, ok1 := doc.SpeakerCluster(m.Speaker)
	ac, ok2 := doc.SpeakerCluster(a.Speaker)
	if ok1 && ok2 {
		return mc == ac
	}
	return m.Speaker == a.Speaker
}

// mentionMatchesSpeakerAnnotation reports whether a word of m's speaker
// name equals a's head.
func mentionMatchesSpeakerAnnotation(m, a *coref.Mention) bool {
	if m.Speaker == "" {
		return false
	}
	name := m.Speaker
	if m.SpeakerInfo != nil && m.SpeakerInfo.Name != "" {
		name = m.SpeakerInfo.Name
	}
	for _, w := range strings.Fields(name) {
		if strings.EqualFold(w, a.HeadString) {
			return true
		}
	}
	return false
}

// AntecedentIsMentionSpeaker reports whether a denotes the speaker of m.
func AntecedentIsMentionSpeaker(doc *coref.Document, m, a *coref.Mention) bool {
	return doc.IsSpeakerPair(m, a) || mentionMatchesSpeakerAnnotation(m, a)
}

// IsSpeaker reports whether either mention denotes the other's speaker.
func IsSpeaker(doc *coref.Document, m, a *coref.Mention) bool {
	return AntecedentIsMentionSpeaker(doc, m, a) || AntecedentIsMentionSpeaker(doc, a, m)
}

func isInterlocutor(p coref.Person) bool {
	return p == coref.I || p == coref.We || p == coref.You
}

// PersonDisagree reports a grammatical person clash between two mentions,
// taking speakers into account: a "you" must be the previous utterance's
// speaker.
func PersonDisagree(doc *coref.Document, m, a *coref.Mention) bool {
	sameSpeaker := SameSpeaker(doc, m, a)
	if sameSpeaker && m.Person != a.Person {
		switch {
		case m.Person == coref.It && a.Person == coref.They,
			m.Person == coref.They && a.Person == coref.It,
			m.Person == coref.They && a.Person == coref.They:
			return false
		case m.Person != coref.UnknownPerson && a.Person != coref.UnknownPerson:
			return true
		}
	}
	if sameSpeaker {
		if !a.IsPronominal() {
			if isInterlocutor(m.Person) {
				return true
			}
		} else if !m.IsPronominal() {
			if isInterlocutor(a.Person) {
				return true
			}
		}
	}
	switch {
	case m.Person == coref.You && a.AppearsEarlierThan(m):
		return addresseeMismatch(doc, m, a)
	case a.Person == coref.You && m.AppearsEarlierThan(a):
		return addresseeMismatch(doc, a, m)
	}
	return false
}

// addresseeMismatch checks that other belongs to the cluster of the speaker
// who spoke just before you, or is itself an "I".
func addresseeMismatch(doc *coref.Document, you, other *coref.Mention) bool {
	prev, ok := doc.Speakers[you.Utterance-1]
	if !ok {
		return true
	}
	cid, ok := doc.SpeakerCluster(prev)
	if !ok {
		return true
	}
	return other.ClusterID != cid && other.Person != coref.I
}

// ClusterPersonDisagree reports a person clash between any member pair.
func ClusterPersonDisagree(doc *coref.Document, c1, c2 *coref.Cluster) bool {
	for _, m := range c1.Mentions {
		for _, a := range c2.Mentions {
			if PersonDisagree(doc, m, a) {
				return true
			}
		}
	}
	return false
}

// SubjectObject reports whether the mentions are the subject and an object
// of the same verb.
func SubjectObject(m, a *coref.Mention) bool {
	if m.SentNum != a.SentNum || m.DependingVerb < 0 || m.DependingVerb != a.DependingVerb {
		return false
	}
	isObject := func(x *coref.Mention) bool {
		return x.IsDirectObject || x.IsIndirectObject || x.IsPrepositionObject
	}
	return (m.IsSubject && isObject(a)) || (a.IsSubject && isObject(m))
}

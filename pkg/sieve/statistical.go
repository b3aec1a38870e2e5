package sieve

import (
	"fmt"

	"github.com/orneryd/corefsieve/pkg/coref"
)

// Statistical merges each mention with its most probable antecedent when
// the classifier's probability clears Threshold.
type Statistical struct {
	name       string
	classifier Classifier
	threshold  float64
	settings   Settings
}

// NewStatistical builds a statistical sieve around a trained classifier.
func NewStatistical(name string, c Classifier, threshold float64, s Settings) (*Statistical, error) {
	if c == nil {
		return nil, ErrNoClassifier
	}
	if name == "" {
		name = KindStatistical.String()
	}
	return &Statistical{name: name, classifier: c, threshold: threshold, settings: s}, nil
}

func (s *Statistical) Name() string { return s.name }
func (*Statistical) Kind() Kind     { return KindStatistical }
func (*Statistical) sealed()        {}

// Threshold returns the merge threshold.
func (s *Statistical) Threshold() float64 { return s.threshold }

// Resolve implements Sieve. Candidates come from the sentence window,
// nearest sentence first; cataphoric candidates in the mention's own
// sentence are ignored. Feature or classifier failures abort the run.
func (s *Statistical) Resolve(doc *coref.Document, env *Env) (Stats, error) {
	stats := newStats(s.name)
	for sentI, ms := range doc.MentionsBySentence {
		for _, m := range ms {
			if !allowsType(s.settings.MentionTypes, m.Type) {
				continue
			}
			best, bestProb, err := s.bestAntecedent(doc, env, sentI, m, &stats)
			if err != nil {
				return stats, err
			}
			if best == nil || bestProb <= s.threshold {
				continue
			}
			survivor, merged := doc.Merge(m.ID, best.ID)
			if !merged {
				continue
			}
			stats.Merges++
			env.logger().Debug("merge", "sieve", s.name, "p", bestProb,
				"mention", m.ID, "antecedent", best.ID, "cluster", survivor)
		}
	}
	return stats, nil
}

func (s *Statistical) bestAntecedent(doc *coref.Document, env *Env, sentI int, m *coref.Mention, stats *Stats) (*coref.Mention, float64, error) {
	var best *coref.Mention
	bestProb := -1.0
	for _, sentJ := range SentenceWindow(sentI, s.settings.MaxSentenceDistance) {
		for _, a := range OrderedAntecedents(doc, sentJ, m, env.Dicts) {
			if a == m || !allowsType(s.settings.AntecedentTypes, a.Type) {
				continue
			}
			if sentJ == sentI && m.AppearsEarlierThan(a) {
				continue
			}
			if s.settings.HonorFilter && !env.Filter.Allows(m.ID, a.ID) {
				continue
			}
			f, err := ExtractFeatures(doc, env, m, a)
			if err != nil {
				return nil, 0, err
			}
			p, err := s.classifier.Probability(f)
			if err != nil {
				return nil, 0, fmt.Errorf("scoring mention %d against %d: %w", m.ID, a.ID, err)
			}
			stats.Pairs++
			if p > bestProb {
				best, bestProb = a, p
			}
		}
	}
	return best, bestProb, nil
}

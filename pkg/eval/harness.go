// Package eval scores coreference output against gold annotations.
//
// Every mention carries a gold cluster id; after resolution every mention
// sits in a predicted cluster. The two partitions are compared with the
// standard link- and mention-based metrics:
//   - MUC: how many links must be added to the response to recover each
//     gold entity, and vice versa
//   - B³: per-mention overlap between its gold and predicted clusters
//   - Pairwise: precision and recall of coreferent mention pairs
//
// Example usage:
//
//	harness := eval.NewHarness(p)
//	harness.AddDocuments(docs...)
//
//	results, err := harness.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("MUC F1: %.2f\n", results.Aggregate.MUC.F1)
//	fmt.Printf("B3 F1:  %.2f\n", results.Aggregate.BCubed.F1)
//
// Aggregate scores are micro-averaged: numerators and denominators are
// summed over documents before dividing.
package eval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/docjson"
	"github.com/orneryd/corefsieve/pkg/pipeline"
)

// Score is precision, recall and F1 together with the counts they were
// computed from.
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	PNum float64 `json:"p_num"`
	PDen float64 `json:"p_den"`
	RNum float64 `json:"r_num"`
	RDen float64 `json:"r_den"`
}

func newScore(pNum, pDen, rNum, rDen float64) Score {
	s := Score{PNum: pNum, PDen: pDen, RNum: rNum, RDen: rDen}
	if pDen > 0 {
		s.Precision = pNum / pDen
	}
	if rDen > 0 {
		s.Recall = rNum / rDen
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

// Add sums the counts of s and o.
func (s Score) Add(o Score) Score {
	return newScore(s.PNum+o.PNum, s.PDen+o.PDen, s.RNum+o.RNum, s.RDen+o.RDen)
}

// Metrics contains all computed evaluation metrics.
type Metrics struct {
	MUC      Score `json:"muc"`
	BCubed   Score `json:"bcubed"`
	Pairwise Score `json:"pairwise"`
}

// Average is the mean of the MUC and B³ F1 scores.
func (m Metrics) Average() float64 { return (m.MUC.F1 + m.BCubed.F1) / 2 }

func (m Metrics) add(o Metrics) Metrics {
	return Metrics{
		MUC:      m.MUC.Add(o.MUC),
		BCubed:   m.BCubed.Add(o.BCubed),
		Pairwise: m.Pairwise.Add(o.Pairwise),
	}
}

// Partition maps a mention id to its cluster id.
type Partition map[int]int

// Gold returns the gold partition of doc. Mentions without a gold id are
// treated as singletons.
func Gold(doc *coref.Document) Partition {
	p := make(Partition, doc.MentionCount())
	next := -1
	for _, m := range doc.Mentions() {
		if m.GoldClusterID >= 0 {
			p[m.ID] = m.GoldClusterID
			continue
		}
		p[m.ID] = next
		next--
	}
	return p
}

// Predicted returns the current cluster partition of doc.
func Predicted(doc *coref.Document) Partition {
	p := make(Partition, doc.MentionCount())
	for _, m := range doc.Mentions() {
		p[m.ID] = m.ClusterID
	}
	return p
}

// clusters inverts p.
func (p Partition) clusters() map[int][]int {
	out := make(map[int][]int)
	for m, c := range p {
		out[c] = append(out[c], m)
	}
	return out
}

// Compare scores response against key.
func Compare(key, response Partition) Metrics {
	return Metrics{
		MUC:      muc(key, response),
		BCubed:   bcubed(key, response),
		Pairwise: pairwise(key, response),
	}
}

// ScoreDocument scores the current clusters of doc against its gold ids.
func ScoreDocument(doc *coref.Document) Metrics {
	return Compare(Gold(doc), Predicted(doc))
}

// TestResult contains results for a single document.
type TestResult struct {
	DocID    string        `json:"doc_id"`
	Part     int           `json:"part"`
	Mentions int           `json:"mentions"`
	Merges   int           `json:"merges"`
	Metrics  Metrics       `json:"metrics"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// EvalResult contains the complete evaluation results.
type EvalResult struct {
	SuiteName string        `json:"suite_name"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Sieves    []string      `json:"sieves,omitempty"`

	// Aggregate metrics (micro-averaged across all documents)
	Aggregate Metrics `json:"aggregate"`

	// Per-document results
	Results []TestResult `json:"results"`

	TotalTests  int `json:"total_tests"`
	PassedTests int `json:"passed_tests"`
	FailedTests int `json:"failed_tests"`

	Thresholds Thresholds `json:"thresholds"`
}

// Thresholds define minimum acceptable per-document F1 values.
type Thresholds struct {
	MUC      float64 `json:"muc"`
	BCubed   float64 `json:"bcubed"`
	Pairwise float64 `json:"pairwise"`
}

// DefaultThresholds returns sensible default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MUC:      0.5,
		BCubed:   0.5,
		Pairwise: 0.3,
	}
}

// Resolver is the part of *pipeline.Pipeline the harness needs.
type Resolver interface {
	Resolve(ctx context.Context, doc *coref.Document) (*pipeline.Result, error)
}

// Harness is the main evaluation harness.
type Harness struct {
	resolver   Resolver
	docs       []*coref.Document
	thresholds Thresholds
	name       string
	mu         sync.RWMutex
}

// NewHarness creates a new evaluation harness.
func NewHarness(r Resolver) *Harness {
	return &Harness{
		resolver:   r,
		docs:       make([]*coref.Document, 0),
		thresholds: DefaultThresholds(),
		name:       "default",
	}
}

// SetThresholds sets the pass/fail thresholds.
func (h *Harness) SetThresholds(t Thresholds) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.thresholds = t
}

// SetName names the suite in reports.
func (h *Harness) SetName(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.name = name
}

// AddDocuments adds gold-annotated documents. They are resolved in place
// by Run.
func (h *Harness) AddDocuments(docs ...*coref.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs = append(h.docs, docs...)
}

// LoadSuite loads documents from a JSON file.
func (h *Harness) LoadSuite(path string) error {
	docs, err := docjson.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load suite: %w", err)
	}
	h.AddDocuments(docs...)
	return nil
}

// Run resolves every document and scores it. A document that fails to
// resolve is reported and counted as failed; cancellation stops the run.
func (h *Harness) Run(ctx context.Context) (*EvalResult, error) {
	h.mu.RLock()
	docs := make([]*coref.Document, len(h.docs))
	copy(docs, h.docs)
	thresholds := h.thresholds
	name := h.name
	h.mu.RUnlock()

	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents defined")
	}

	startTime := time.Now()
	results := make([]TestResult, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, h.runDocument(ctx, doc))
	}

	passed, failed := h.countPassFail(results, thresholds)
	out := &EvalResult{
		SuiteName:   name,
		Timestamp:   startTime,
		Duration:    time.Since(startTime),
		Aggregate:   h.computeAggregate(results),
		Results:     results,
		TotalTests:  len(results),
		PassedTests: passed,
		FailedTests: failed,
		Thresholds:  thresholds,
	}
	if p, ok := h.resolver.(*pipeline.Pipeline); ok {
		out.Sieves = p.Sieves()
	}
	return out, nil
}

func (h *Harness) runDocument(ctx context.Context, doc *coref.Document) TestResult {
	start := time.Now()
	res, err := h.resolver.Resolve(ctx, doc)
	if err != nil {
		return TestResult{
			DocID:    doc.ID,
			Part:     doc.Part,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
	}
	return TestResult{
		DocID:    doc.ID,
		Part:     doc.Part,
		Mentions: doc.MentionCount(),
		Merges:   res.Merges(),
		Metrics:  ScoreDocument(doc),
		Duration: time.Since(start),
	}
}

// computeAggregate sums metric counts across all successful results.
func (h *Harness) computeAggregate(results []TestResult) Metrics {
	var agg Metrics
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		agg = agg.add(r.Metrics)
	}
	return agg
}

// countPassFail counts documents that meet thresholds.
func (h *Harness) countPassFail(results []TestResult, t Thresholds) (passed, failed int) {
	for _, r := range results {
		if r.Error != "" {
			failed++
			continue
		}
		if r.Metrics.MUC.F1 >= t.MUC &&
			r.Metrics.BCubed.F1 >= t.BCubed &&
			r.Metrics.Pairwise.F1 >= t.Pairwise {
			passed++
		} else {
			failed++
		}
	}
	return
}

// === Metric calculation functions ===

// muc computes the link-based MUC score. Recall counts, for each key
// entity K, |K| minus the number of response clusters K is split across;
// precision swaps the roles.
func muc(key, response Partition) Score {
	rNum, rDen := mucCounts(key, response)
	pNum, pDen := mucCounts(response, key)
	return newScore(pNum, pDen, rNum, rDen)
}

func mucCounts(key, response Partition) (num, den float64) {
	for _, members := range key.clusters() {
		parts := make(map[int]struct{})
		unaligned := 0
		for _, m := range members {
			if c, ok := response[m]; ok {
				parts[c] = struct{}{}
			} else {
				unaligned++
			}
		}
		num += float64(len(members) - len(parts) - unaligned)
		den += float64(len(members) - 1)
	}
	return num, den
}

// bcubed computes the mention-based B³ score.
func bcubed(key, response Partition) Score {
	rNum, rDen := bcubedCounts(key, response)
	pNum, pDen := bcubedCounts(response, key)
	return newScore(pNum, pDen, rNum, rDen)
}

// bcubedCounts sums, over mentions of key, the fraction of the mention's
// key cluster that shares its response cluster.
func bcubedCounts(key, response Partition) (num, den float64) {
	keyClusters := key.clusters()
	for m, kc := range key {
		members := keyClusters[kc]
		den++
		rc, ok := response[m]
		if !ok {
			continue
		}
		overlap := 0
		for _, o := range members {
			if c, ok := response[o]; ok && c == rc {
				overlap++
			}
		}
		num += float64(overlap) / float64(len(members))
	}
	return num, den
}

// pairwise computes precision and recall over coreferent mention pairs.
func pairwise(key, response Partition) Score {
	keyLinks := links(key)
	respLinks := links(response)
	common := 0
	for l := range respLinks {
		if _, ok := keyLinks[l]; ok {
			common++
		}
	}
	return newScore(float64(common), float64(len(respLinks)), float64(common), float64(len(keyLinks)))
}

func links(p Partition) map[[2]int]struct{} {
	out := make(map[[2]int]struct{})
	for _, members := range p.clusters() {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				if a > b {
					a, b = b, a
				}
				out[[2]int{a, b}] = struct{}{}
			}
		}
	}
	return out
}
